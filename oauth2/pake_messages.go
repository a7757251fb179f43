package oauth2

// PasswordRequest starts a login or a registration. ClientRequest is the client's first
// PAKE message, base64url encoded.
type PasswordRequest struct {
	Username      string `json:"username"`
	ClientRequest string `json:"client_request"`
}

// PasswordResponse carries the server's PAKE reply and the id that correlates the finish call.
type PasswordResponse struct {
	ServerMessage string `json:"server_message"`
	AuthID        string `json:"auth_id"`
}

// FinishLogin completes a login. FlowID links the authenticated session to a pending
// authorization request.
type FinishLogin struct {
	AuthID       string `json:"auth_id"`
	Username     string `json:"username"`
	ClientFinish string `json:"client_request"`
	FlowID       string `json:"flow_id"`
}

// FinishRegister completes a registration with the client's final PAKE message.
type FinishRegister struct {
	AuthID       string `json:"auth_id"`
	Username     string `json:"username"`
	ClientFinish string `json:"client_request"`
}
