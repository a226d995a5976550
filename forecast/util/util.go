// Package util holds text helpers shared by the table printers of the forecast models
package util

import "strings"

// IndentExpand returns indent repeated growth times, empty for a non positive growth
func IndentExpand(indent string, growth int) string {
	if growth <= 0 {
		return ""
	}
	return strings.Repeat(indent, growth)
}
