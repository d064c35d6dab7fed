// Package search provides the web search backend used by the web_search tool.
//
// Tavily is the only provider; it requires an API key (TAVILY_API_KEY).
//
//	provider := search.NewTavily(apiKey, search.WithDepth("advanced"))
//	results, err := provider.Search(ctx, "golang release notes", 2)
package search
