package api

// NewUserRequest registers a key with the server.
type NewUserRequest struct {
	Fingerprint string `json:"fingerprint"`
	UserID      string `json:"user_id"`
	PubKey      string `json:"pubkey"`
	PubKeyHash  string `json:"pubkey_hash"`
}

// ProjectUser is a project member. PublicKey is an armored OpenPGP key.
type ProjectUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
	PublicKey string `json:"public_key"`
}

// ProjectInfo lists the members a project's variables are sealed to.
type ProjectInfo struct {
	ProjectID string        `json:"project_id"`
	Users     []ProjectUser `json:"users"`
}

type setVariableRequest struct {
	ProjectID string `json:"project_id"`
	Value     string `json:"value"`
}

type setManyRequest struct {
	ProjectID string   `json:"project_id"`
	Variables []string `json:"variables"`
}

type variableID struct {
	ID string `json:"id"`
}
