package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/joakmannn/SocialMed/internal/config"
	"github.com/joakmannn/SocialMed/internal/core/domain"
)

const tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

type GoogleClient struct {
	ClientID string
}

func NewGoogleClient(cfg config.GoogleConfig) *GoogleClient {
	return &GoogleClient{
		ClientID: cfg.ClientID,
	}
}

func (g *GoogleClient) VerifyIDToken(ctx context.Context, idToken string) (*domain.ExternalIdentity, error) {
	apiURL := tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)

	req, _ := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google tokeninfo error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("google tokeninfo rejected token: status %d", resp.StatusCode)
	}

	var result struct {
		Aud     string `json:"aud"`
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if g.ClientID != "" && result.Aud != g.ClientID {
		return nil, fmt.Errorf("google token audience mismatch")
	}
	if result.Email == "" {
		return nil, fmt.Errorf("google token carries no email")
	}
	return &domain.ExternalIdentity{
		Subject:   result.Sub,
		Email:     result.Email,
		Name:      result.Name,
		AvatarURL: result.Picture,
	}, nil
}
