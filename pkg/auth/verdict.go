package auth

// Verdict is the outcome of checking a token pair.
type Verdict string

const (
	Valid          Verdict = "valid"
	Invalid        Verdict = "invalid"
	AccessExpired  Verdict = "access_expired"
	RefreshExpired Verdict = "refresh_expired"
)

// Rejection is the JSON message sent before closing a refused session.
type Rejection struct {
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var rejections = map[Verdict]Rejection{
	Invalid:        {Type: "error", Code: 4401, Message: "Invalid token"},
	AccessExpired:  {Type: "error", Code: 4402, Message: "Access token expired"},
	RefreshExpired: {Type: "error", Code: 4403, Message: "Refresh token expired"},
}

// Rejection returns the close message of v. The second result is false for
// Valid and unknown verdicts.
func (v Verdict) Rejection() (Rejection, bool) {
	r, ok := rejections[v]
	return r, ok
}
