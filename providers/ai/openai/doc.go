// Package openai implements [ai.Provider] for servers speaking the OpenAI
// chat-completions protocol: OpenAI itself and the local inference servers
// (vLLM, llama.cpp, Ollama, text-generation-inference) that mirror it.
//
// A request is a POST carrying the model identifier and the messages; the
// generated text is read from choices[0].message.content. [New] reads
// LLM_API_URL, LLM_API_KEY and LLM_MODEL from the environment; use
// [OpenAIProvider.WithEndpoint], [OpenAIProvider.WithBaseURL] and
// [OpenAIProvider.WithAPIKey] to override them programmatically.
package openai
