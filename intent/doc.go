// Package intent classifies user messages into request categories.
//
// The KeywordClassifier scores the lowercased input against weighted keyword
// sets, one per Intent. Substring matches add the keyword weight and whole-token
// matches add half of it again. Inputs that mix policy and weak prediction
// signals, or carry strong "comprehensive" keywords, are classified as
// Comprehensive with a fixed confidence of 0.9.
//
// Ties are broken deterministically by Priority. Empty input, or input with no
// matching keyword, is PolicyInfo with confidence 0.
//
//	c, err := intent.NewKeywordClassifier()
//	label, confidence := c.ScoreConfidence("REC가 무엇인가요?")
//	// label == intent.PolicyInfo, confidence == 1.0
package intent
