package kv

// Key namespaces for the entries the flows share.
func FlowKey(flowID string) string { return "flow:" + flowID }
func AuthKey(authID string) string { return "auth:" + authID }
func CodeKey(code string) string   { return "code:" + code }
