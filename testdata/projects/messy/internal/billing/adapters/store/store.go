// Package store persists invoices.
package store

// Name identifies the backing store.
const Name = "memory"
