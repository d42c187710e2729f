// Package html extracts readable text from HTML policy documents.
// Scripts, styles and comments are dropped and entities are decoded.
package html
