// Package identityprovider содержит HTTP-клиент внешнего identity-сервиса.
// HubPass не хранит учётные данные: регистрация и аутентификация делегированы
// провайдеру, здесь нужен только поиск учётной записи по email при проверке
// членства через lookup.
package identityprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound возвращается, когда учётная запись с таким email
// не зарегистрирована у провайдера.
var ErrNotFound = errors.New("identity not found")

// Identity — учётная запись во внешнем identity-сервисе.
type Identity struct {
	UID   string `json:"id"`
	Email string `json:"email"`
}

// Client — клиент административного API identity-провайдера.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient создаёт новый клиент identity-провайдера.
func NewClient(baseURL, serviceKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// GetIdentityByEmail разрешает email в учётную запись провайдера.
func (c *Client) GetIdentityByEmail(ctx context.Context, email string) (*Identity, error) {
	const op = "identityprovider.GetIdentityByEmail"

	req, err := c.newRequest(ctx, http.MethodGet, "/admin/users?email="+url.QueryEscape(email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var body struct {
		Users []Identity `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(body.Users) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return &body.Users[0], nil
}
