// Package llm invokes remote reasoning services. It supports Anthropic,
// OpenAI and Google Gemini behind one stateless Invoker interface, with
// optional provider-side web search.
package llm
