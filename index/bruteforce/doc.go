// Package bruteforce provides a vector index that answers kNN queries by
// scoring all vectors with the cosine batch kernel. It supports a compact
// binary format for persistence.
package bruteforce
