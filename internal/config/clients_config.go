package config

import "strings"

type ClientsConfig interface {
	GetRegisteredClients() map[string][]string
}

type Clients struct{}

var _ ClientsConfig = Clients{}

// GetRegisteredClients parses OAUTH_CLIENTS, formatted "id=uri1|uri2;id2=uri3".
// An empty result leaves the registry open.
func (Clients) GetRegisteredClients() map[string][]string {
	return ParseClients(GetEnv("OAUTH_CLIENTS", ""))
}

func ParseClients(raw string) map[string][]string {
	registered := make(map[string][]string)
	for _, entry := range strings.Split(raw, ";") {
		id, uris, found := strings.Cut(strings.TrimSpace(entry), "=")
		if !found || id == "" {
			continue
		}
		for _, uri := range strings.Split(uris, "|") {
			if uri = strings.TrimSpace(uri); uri != "" {
				registered[id] = append(registered[id], uri)
			}
		}
	}
	return registered
}
