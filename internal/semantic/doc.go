// Package semantic adapts an external LLM classification service into
// the analysis pipeline. The adapter is deliberately paranoid about the
// service: every failure mode, from a timeout to unparseable output,
// degrades to the same empty result, so the pipeline never branches on
// classifier errors and runs identically with the classifier disabled.
package semantic
