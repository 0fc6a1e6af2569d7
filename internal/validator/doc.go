// Package validator wraps go-playground/validator with JSON-field-name
// error formatting for request input types.
package validator
