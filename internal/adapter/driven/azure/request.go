package azure

// Fixed upstream configuration. None of these are user-configurable.
const (
	DefaultEndpoint = "https://openaiwestus001.openai.azure.com"
	deployment      = "gpt-4o-mini"
	apiVersion      = "2025-01-01-preview"

	systemPrompt = "You are a medical assistant to treat breast cancer."

	searchEndpoint      = "https://aisearchrag0001.search.windows.net/"
	searchIndex         = "indexpdfguidelines"
	searchAuthType      = "system_assigned_managed_identity"
	searchQueryType     = "vector_simple_hybrid"
	embeddingDeployment = "text-embedding-ada-002"
	semanticConfig      = "default"
)

// chatRequest is the body POSTed to the chat-completions endpoint.
type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	DataSources []dataSource  `json:"data_sources"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type dataSource struct {
	Type       string           `json:"type"`
	Parameters searchParameters `json:"parameters"`
}

type searchParameters struct {
	Endpoint              string              `json:"endpoint"`
	IndexName             string              `json:"index_name"`
	Authentication        searchAuth          `json:"authentication"`
	QueryType             string              `json:"query_type"`
	EmbeddingDependency   embeddingDependency `json:"embedding_dependency"`
	SemanticConfiguration string              `json:"semantic_configuration"`
}

type searchAuth struct {
	Type string `json:"type"`
}

type embeddingDependency struct {
	Type           string `json:"type"`
	DeploymentName string `json:"deployment_name"`
}

// newChatRequest builds the fixed-shape body. Only the user message varies.
func newChatRequest(question string) chatRequest {
	return chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: question},
		},
		DataSources: []dataSource{
			{
				Type: "azure_search",
				Parameters: searchParameters{
					Endpoint:       searchEndpoint,
					IndexName:      searchIndex,
					Authentication: searchAuth{Type: searchAuthType},
					QueryType:      searchQueryType,
					EmbeddingDependency: embeddingDependency{
						Type:           "deployment_name",
						DeploymentName: embeddingDeployment,
					},
					SemanticConfiguration: semanticConfig,
				},
			},
		},
	}
}

// errorEnvelope is the provider's error body: {"error":{"message":"..."}}.
type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
