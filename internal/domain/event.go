package domain

// VoiceStateEvent is one presence transition delivered by the gateway.
// PrevChannelID / NewChannelID are empty when the member was not connected /
// disconnected entirely. Delivery is order-preserving per member.
type VoiceStateEvent struct {
	GuildID       string `json:"guild_id"`
	MemberID      string `json:"member_id"`
	MemberName    string `json:"member_name"` // display name, used for default room names
	IsBot         bool   `json:"is_bot"`
	PrevChannelID string `json:"prev_channel_id"`
	NewChannelID  string `json:"new_channel_id"`
}
