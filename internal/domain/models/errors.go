package models

import "errors"

// Store-level errors shared by the repositories and the services above them.
var (
	ErrItemNotFound      = errors.New("item not found")
	ErrSupplierNotFound  = errors.New("supplier not found")
	ErrQuotationNotFound = errors.New("quotation not found")
	ErrInvalidID         = errors.New("invalid id")
	ErrDuplicateItemName = errors.New("an item with this name already exists")
)
