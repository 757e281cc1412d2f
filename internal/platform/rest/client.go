// Package rest implements platform.ChannelAPI over the chat platform's HTTP
// API. Timeouts come from the underlying http.Client; callers are expected to
// treat failures as transient and move on.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/INIRU/Tinklepaw-sub002/internal/platform"
)

const channelTypeVoice = "voice"

// Client talks to the platform's channel API with a bot token.
type Client struct {
	baseURL string
	token   string
	guildID string // also the subject ID of the everyone role
	http    *http.Client
}

// NewClient creates a REST client. guildID doubles as the everyone-role
// subject when reading permission overwrites.
func NewClient(baseURL, token, guildID string) *Client {
	if baseURL == "" || token == "" || guildID == "" {
		panic("baseURL, token and guildID are required for the platform REST client")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		guildID: guildID,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type channelPayload struct {
	ID                   string               `json:"id"`
	Type                 string               `json:"type"`
	Name                 string               `json:"name"`
	ParentID             string               `json:"parent_id"`
	UserLimit            int                  `json:"user_limit"`
	RTCRegion            string               `json:"rtc_region"`
	PermissionOverwrites []overwritePayload   `json:"permission_overwrites"`
}

type overwritePayload struct {
	SubjectID string `json:"subject_id"`
	Connect   *bool  `json:"connect"`
}

// CreateVoiceChannel implements platform.ChannelAPI.
func (c *Client) CreateVoiceChannel(ctx context.Context, params platform.CreateVoiceChannelParams) (*platform.VoiceChannel, error) {
	body := map[string]interface{}{
		"name":       params.Name,
		"type":       channelTypeVoice,
		"user_limit": params.UserLimit,
	}
	if params.ParentID != "" {
		body["parent_id"] = params.ParentID
	}
	if params.RTCRegion != "" {
		body["rtc_region"] = params.RTCRegion
	}

	var resp channelPayload
	path := fmt.Sprintf("/guilds/%s/channels", url.PathEscape(params.GuildID))
	if err := c.do(ctx, http.MethodPost, path, params.Reason, body, &resp); err != nil {
		return nil, err
	}
	return &platform.VoiceChannel{
		ID:       resp.ID,
		ParentID: resp.ParentID,
		Voice:    resp.Type == channelTypeVoice,
	}, nil
}

// DeleteChannel implements platform.ChannelAPI.
func (c *Client) DeleteChannel(ctx context.Context, channelID, reason string) error {
	path := fmt.Sprintf("/channels/%s", url.PathEscape(channelID))
	return c.do(ctx, http.MethodDelete, path, reason, nil, nil)
}

// ModifyVoiceChannel implements platform.ChannelAPI.
func (c *Client) ModifyVoiceChannel(ctx context.Context, channelID string, patch platform.ModifyVoiceChannelParams) error {
	body := map[string]interface{}{}
	if patch.Name != nil {
		body["name"] = *patch.Name
	}
	if patch.UserLimit != nil {
		body["user_limit"] = *patch.UserLimit
	}
	if patch.RTCRegion != nil {
		body["rtc_region"] = *patch.RTCRegion
	}
	if len(body) == 0 {
		return nil
	}
	path := fmt.Sprintf("/channels/%s", url.PathEscape(channelID))
	return c.do(ctx, http.MethodPatch, path, "", body, nil)
}

// SetPermissionOverride implements platform.ChannelAPI. Nil fields serialize
// as JSON null, which the platform treats as inherit.
func (c *Client) SetPermissionOverride(ctx context.Context, channelID, subjectID string, override platform.PermissionOverride) error {
	body := map[string]interface{}{
		"connect":        override.Connect,
		"manage_channel": override.ManageChannel,
		"move_members":   override.MoveMembers,
	}
	path := fmt.Sprintf("/channels/%s/permissions/%s", url.PathEscape(channelID), url.PathEscape(subjectID))
	return c.do(ctx, http.MethodPut, path, "", body, nil)
}

// MoveMember implements platform.ChannelAPI.
func (c *Client) MoveMember(ctx context.Context, guildID, memberID, channelID string) error {
	body := map[string]interface{}{"channel_id": channelID}
	path := fmt.Sprintf("/guilds/%s/members/%s", url.PathEscape(guildID), url.PathEscape(memberID))
	return c.do(ctx, http.MethodPatch, path, "", body, nil)
}

// ChannelOccupants implements platform.ChannelAPI.
func (c *Client) ChannelOccupants(ctx context.Context, channelID string) ([]platform.Occupant, error) {
	var resp []struct {
		MemberID string `json:"member_id"`
		IsBot    bool   `json:"is_bot"`
	}
	path := fmt.Sprintf("/channels/%s/voice-states", url.PathEscape(channelID))
	if err := c.do(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, err
	}
	occupants := make([]platform.Occupant, 0, len(resp))
	for _, vs := range resp {
		occupants = append(occupants, platform.Occupant{MemberID: vs.MemberID, IsBot: vs.IsBot})
	}
	return occupants, nil
}

// ChannelLiveSettings implements platform.ChannelAPI. The lock state is
// inferred from the everyone role's connect overwrite.
func (c *Client) ChannelLiveSettings(ctx context.Context, channelID string) (*platform.LiveSettings, error) {
	var resp channelPayload
	path := fmt.Sprintf("/channels/%s", url.PathEscape(channelID))
	if err := c.do(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, err
	}

	locked := false
	for _, ow := range resp.PermissionOverwrites {
		if ow.SubjectID == c.guildID && ow.Connect != nil && !*ow.Connect {
			locked = true
			break
		}
	}
	return &platform.LiveSettings{
		Name:              resp.Name,
		UserLimit:         resp.UserLimit,
		RTCRegion:         resp.RTCRegion,
		ParentID:          resp.ParentID,
		Voice:             resp.Type == channelTypeVoice,
		LockedForEveryone: locked,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path, reason string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("platform: encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("platform: build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if reason != "" {
		req.Header.Set("X-Audit-Log-Reason", reason)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("platform: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("platform: %s %s returned %d: %s", method, path, resp.StatusCode, string(snippet))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("platform: decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}
