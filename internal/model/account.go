package model

// Platform names accepted in Account.Platform.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// NoticeState records which note thresholds have already been announced for
// one account, so repeated checks do not repeat the same notice. It is an
// explicit record passed into and returned from the note check rather than
// ambient shared state.
type NoticeState struct {
	ResinReached   bool `json:"resin_reached,omitempty"`
	ResinFull      bool `json:"resin_full,omitempty"`
	HomeCoinFull   bool `json:"home_coin_full,omitempty"`
	StaminaReached bool `json:"stamina_reached,omitempty"`
	StaminaFull    bool `json:"stamina_full,omitempty"`
}

// Account is one bound platform account with its session and preferences.
// DeviceIDiOS/DeviceIDAndroid are generated once at bind time and reused
// for every subsequent request; DeviceFP is issued by the server.
type Account struct {
	UID             string        `json:"uid"`
	Tokens          SessionTokens `json:"tokens"`
	DeviceIDiOS     string        `json:"device_id_ios"`
	DeviceIDAndroid string        `json:"device_id_android"`
	DeviceFP        string        `json:"device_fp,omitempty"`
	Platform        string        `json:"platform"`

	SolverURL    string            `json:"solver_url,omitempty"`
	SolverParams map[string]string `json:"solver_params,omitempty"`

	EnableNotice   bool     `json:"enable_notice"`
	EnableMission  bool     `json:"enable_mission"`
	EnableGameSign bool     `json:"enable_game_sign"`
	SignGames      []string `json:"sign_games,omitempty"`
	MissionGames   []string `json:"mission_games,omitempty"`

	ResinThreshold   int `json:"resin_threshold,omitempty"`
	StaminaThreshold int `json:"stamina_threshold,omitempty"`

	Notice NoticeState `json:"notice,omitempty"`
}

// DeviceID returns the fingerprint matching the account's platform variant.
func (a *Account) DeviceID() string {
	if a.Platform == PlatformAndroid {
		return a.DeviceIDAndroid
	}
	return a.DeviceIDiOS
}
