// Package retriever pulls individual parameters out of free text with an
// LLM.
//
// The annotating retriever asks the model to copy the input verbatim and
// wrap every mention of the parameter in curly braces; the braced spans
// are the answer and the unbraced copy is checked against the input so
// that paraphrased answers are retried. The multiple-choice retriever
// restricts the answer to a fixed list of options. Both run repeated
// attempts under derived trial ids so each attempt gets its own cached
// completion.
package retriever
