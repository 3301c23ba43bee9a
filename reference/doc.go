// Package reference resolves follow-up questions that point back at the
// previous exchange ("그 제도는 언제부터 시행됐나요?").
//
// The longest token of the previous user question becomes the anchor, every
// demonstrative reference in the follow-up is replaced by it, and the result
// is prefixed with the previous question and answer so retrieval sees the
// full context.
package reference
