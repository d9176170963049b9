package oauth

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/socialauth/internal/models"
)

func TestDecoders(t *testing.T) {
	tests := []struct {
		decode  ProfileDecoder
		want    *models.ProviderProfile
		name    string
		body    string
		wantErr bool
	}{
		{
			name:   "google flat profile",
			decode: decodeGoogle,
			body:   `{"sub":"g-1","email":"a@b.com","name":"Ann","picture":"p.jpg"}`,
			want:   &models.ProviderProfile{ExternalID: "g-1", Nickname: "Ann", Email: "a@b.com", AvatarURL: "p.jpg"},
		},
		{
			name:   "google v2 id field",
			decode: decodeGoogle,
			body:   `{"id":"108","name":"Bob"}`,
			want:   &models.ProviderProfile{ExternalID: "108", Nickname: "Bob"},
		},
		{
			name:    "google without sub",
			decode:  decodeGoogle,
			body:    `{"email":"a@b.com"}`,
			wantErr: true,
		},
		{
			name:   "kakao nested profile",
			decode: decodeKakao,
			body:   `{"id":4242424242,"kakao_account":{"email":"k@kakao.com","profile":{"nickname":"Kim","profile_image_url":"http://k/img.png"}}}`,
			want:   &models.ProviderProfile{ExternalID: "4242424242", Nickname: "Kim", Email: "k@kakao.com", AvatarURL: "http://k/img.png"},
		},
		{
			name:   "kakao without account",
			decode: decodeKakao,
			body:   `{"id":7}`,
			want:   &models.ProviderProfile{ExternalID: "7"},
		},
		{
			name:   "kakao account without profile",
			decode: decodeKakao,
			body:   `{"id":7,"kakao_account":{"email":"k@kakao.com"}}`,
			want:   &models.ProviderProfile{ExternalID: "7", Email: "k@kakao.com"},
		},
		{
			name:    "kakao without id",
			decode:  decodeKakao,
			body:    `{"kakao_account":{"email":"k@kakao.com"}}`,
			wantErr: true,
		},
		{
			name:    "kakao fractional id",
			decode:  decodeKakao,
			body:    `{"id":1.5}`,
			wantErr: true,
		},
		{
			name:   "naver response envelope",
			decode: decodeNaver,
			body:   `{"resultcode":"00","message":"success","response":{"id":"nv-1","nickname":"Lee","email":"l@naver.com","profile_image":"https://n/p.png"}}`,
			want:   &models.ProviderProfile{ExternalID: "nv-1", Nickname: "Lee", Email: "l@naver.com", AvatarURL: "https://n/p.png"},
		},
		{
			name:    "naver error result",
			decode:  decodeNaver,
			body:    `{"resultcode":"024","message":"Authentication failed"}`,
			wantErr: true,
		},
		{
			name:    "naver without response",
			decode:  decodeNaver,
			body:    `{"resultcode":"00"}`,
			wantErr: true,
		},
		{
			name:   "google optional fields of wrong type",
			decode: decodeGoogle,
			body:   `{"sub":"g-2","name":42,"email":false,"picture":{"url":"x"}}`,
			want:   &models.ProviderProfile{ExternalID: "g-2"},
		},
		{
			name:   "kakao optional fields of wrong type",
			decode: decodeKakao,
			body:   `{"id":7,"kakao_account":{"email":false,"profile":{"nickname":123,"profile_image_url":null}}}`,
			want:   &models.ProviderProfile{ExternalID: "7"},
		},
		{
			name:   "naver optional fields of wrong type",
			decode: decodeNaver,
			body:   `{"resultcode":"00","response":{"id":"nv-2","nickname":["x"],"email":1,"profile_image":true}}`,
			want:   &models.ProviderProfile{ExternalID: "nv-2"},
		},
		{
			name:    "not json",
			decode:  decodeNaver,
			body:    `<html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.decode([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeProfile(t *testing.T) {
	longName := strings.Repeat("가", 60)

	tests := []struct {
		name string
		in   models.ProviderProfile
		want models.ProviderProfile
	}{
		{
			name: "missing nickname gets default",
			in:   models.ProviderProfile{ExternalID: " 1 "},
			want: models.ProviderProfile{ExternalID: "1", Nickname: models.DefaultNickname},
		},
		{
			name: "blank nickname gets default",
			in:   models.ProviderProfile{ExternalID: "1", Nickname: "   "},
			want: models.ProviderProfile{ExternalID: "1", Nickname: models.DefaultNickname},
		},
		{
			name: "decomposed nickname composed",
			in:   models.ProviderProfile{ExternalID: "1", Nickname: "Jose\u0301"},
			want: models.ProviderProfile{ExternalID: "1", Nickname: "Jos\u00e9"},
		},
		{
			name: "oversized email dropped",
			in:   models.ProviderProfile{ExternalID: "1", Nickname: "a", Email: strings.Repeat("e", 95) + "@x.com"},
			want: models.ProviderProfile{ExternalID: "1", Nickname: "a"},
		},
		{
			name: "oversized avatar dropped",
			in:   models.ProviderProfile{ExternalID: "1", Nickname: "a", AvatarURL: "https://x/" + strings.Repeat("p", 300)},
			want: models.ProviderProfile{ExternalID: "1", Nickname: "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeProfile(&tt.in)
			assert.Equal(t, tt.want, *got)
		})
	}

	got := normalizeProfile(&models.ProviderProfile{ExternalID: "1", Nickname: longName})
	assert.Equal(t, models.MaxNicknameLength, utf8.RuneCountInString(got.Nickname))
}
