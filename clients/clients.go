package clients

// Client is a relying party allowed to start authorization flows.
type Client struct {
	ID           string   `json:"id"`
	RedirectURIs []string `json:"redirectURIs"`
}

// RedirectAllowed reports whether uri exactly matches a registered redirect URI.
func (c *Client) RedirectAllowed(uri string) bool {
	for _, registered := range c.RedirectURIs {
		if uri == registered {
			return true
		}
	}
	return false
}
