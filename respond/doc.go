// Package respond renders tool results into the reply shown to the user.
//
// Each intent has a fixed template. Missing values are written as "알 수 없음"
// rather than left out, so a reply always has the same shape.
package respond
