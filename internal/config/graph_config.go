package config

import "strings"

type Graph struct{}

var _ GraphConfig = Graph{}

func (Graph) GetGraphBaseURL() string {
	return strings.TrimRight(GetEnv("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"), "/")
}
