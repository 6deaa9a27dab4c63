// Package token defines lexical tokens of the surface language.
package token
