// Package types defines the Issue entity, its status lifecycle, the pure
// validation rules consulted before every mutation, and the standard error
// taxonomy shared by the storage engine and its callers.
package types
