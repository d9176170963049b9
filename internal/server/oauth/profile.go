package oauth

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/iudanet/socialauth/internal/models"
)

// ProfileDecoder turns a provider's raw user-info body into a profile.
// It returns an error when the mandatory external id is missing.
type ProfileDecoder func(body []byte) (*models.ProviderProfile, error)

// optionalString is a profile field that may be absent. A JSON value that
// is not a string decodes as empty instead of failing the profile.
type optionalString string

func (s *optionalString) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		*s = ""
		return nil
	}
	*s = optionalString(v)
	return nil
}

// googleUserInfo - плоский ответ OpenID userinfo
type googleUserInfo struct {
	Sub     string         `json:"sub"`
	ID      string         `json:"id"` // v2 endpoint
	Name    optionalString `json:"name"`
	Email   optionalString `json:"email"`
	Picture optionalString `json:"picture"`
}

func decodeGoogle(body []byte) (*models.ProviderProfile, error) {
	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("malformed google profile: %w", err)
	}

	id := info.Sub
	if id == "" {
		id = info.ID
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("google profile has no sub")
	}

	return &models.ProviderProfile{
		ExternalID: id,
		Nickname:   string(info.Name),
		Email:      string(info.Email),
		AvatarURL:  string(info.Picture),
	}, nil
}

// kakaoUserInfo - /v2/user/me, id числовой, остальное во вложенном kakao_account
type kakaoUserInfo struct {
	KakaoAccount *struct {
		Profile *struct {
			Nickname        optionalString `json:"nickname"`
			ProfileImageURL optionalString `json:"profile_image_url"`
		} `json:"profile"`
		Email optionalString `json:"email"`
	} `json:"kakao_account"`
	ID json.Number `json:"id"`
}

func decodeKakao(body []byte) (*models.ProviderProfile, error) {
	var info kakaoUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("malformed kakao profile: %w", err)
	}
	if info.ID == "" {
		return nil, fmt.Errorf("kakao profile has no id")
	}
	if _, err := info.ID.Int64(); err != nil {
		return nil, fmt.Errorf("kakao id is not an integer: %w", err)
	}

	profile := &models.ProviderProfile{ExternalID: info.ID.String()}
	if acc := info.KakaoAccount; acc != nil {
		profile.Email = string(acc.Email)
		if acc.Profile != nil {
			profile.Nickname = string(acc.Profile.Nickname)
			profile.AvatarURL = string(acc.Profile.ProfileImageURL)
		}
	}
	return profile, nil
}

// naverUserInfo - /v1/nid/me, данные вложены в response
type naverUserInfo struct {
	Response *struct {
		ID           string         `json:"id"`
		Nickname     optionalString `json:"nickname"`
		Email        optionalString `json:"email"`
		ProfileImage optionalString `json:"profile_image"`
	} `json:"response"`
	ResultCode optionalString `json:"resultcode"`
	Message    optionalString `json:"message"`
}

func decodeNaver(body []byte) (*models.ProviderProfile, error) {
	var info naverUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("malformed naver profile: %w", err)
	}
	if info.ResultCode != "" && info.ResultCode != "00" {
		return nil, fmt.Errorf("naver profile result %s: %s", info.ResultCode, info.Message)
	}
	if info.Response == nil || strings.TrimSpace(info.Response.ID) == "" {
		return nil, fmt.Errorf("naver profile has no id")
	}

	return &models.ProviderProfile{
		ExternalID: info.Response.ID,
		Nickname:   string(info.Response.Nickname),
		Email:      string(info.Response.Email),
		AvatarURL:  string(info.Response.ProfileImage),
	}, nil
}

// normalizeProfile trims every field, NFC-normalizes the nickname and
// applies column limits. Email and avatar that do not fit are dropped
// rather than truncated into something invalid.
func normalizeProfile(p *models.ProviderProfile) *models.ProviderProfile {
	out := &models.ProviderProfile{
		ExternalID: strings.TrimSpace(p.ExternalID),
		Nickname:   normalizeNickname(p.Nickname),
		Email:      strings.TrimSpace(p.Email),
		AvatarURL:  strings.TrimSpace(p.AvatarURL),
	}
	if utf8.RuneCountInString(out.Email) > models.MaxEmailLength {
		out.Email = ""
	}
	if utf8.RuneCountInString(out.AvatarURL) > models.MaxAvatarURLLength {
		out.AvatarURL = ""
	}
	return out
}

func normalizeNickname(nickname string) string {
	nickname = strings.TrimSpace(norm.NFC.String(nickname))
	if nickname == "" {
		return models.DefaultNickname
	}
	if utf8.RuneCountInString(nickname) > models.MaxNicknameLength {
		runes := []rune(nickname)
		nickname = strings.TrimSpace(string(runes[:models.MaxNicknameLength]))
	}
	return nickname
}
