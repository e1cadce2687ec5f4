package facilityservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

// Client клиент для работы с FacilityService (площадки и каталог кортов)
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента FacilityService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetFacility получает настройки площадки (депозит, срок брони, персонал, часовой пояс)
func (c *Client) GetFacility(ctx context.Context, facilityID int64) (*domain.Facility, error) {
	endpoint := fmt.Sprintf("%s/internal/facilities/%d", c.baseURL, facilityID)

	var facility Facility
	if err := c.get(ctx, endpoint, ErrFacilityNotFound, &facility); err != nil {
		return nil, err
	}

	return facility.toDomain(), nil
}

// GetCourt получает корт по ID
func (c *Client) GetCourt(ctx context.Context, courtID int64) (*domain.Court, error) {
	endpoint := fmt.Sprintf("%s/internal/courts/%d", c.baseURL, courtID)

	var court Court
	if err := c.get(ctx, endpoint, ErrCourtNotFound, &court); err != nil {
		return nil, err
	}

	return court.toDomain(), nil
}

// ListCourts получает корты площадки для вида спорта
func (c *Client) ListCourts(ctx context.Context, facilityID, sportID int64) ([]*domain.Court, error) {
	query := url.Values{}
	query.Set("sport_id", strconv.FormatInt(sportID, 10))
	endpoint := fmt.Sprintf("%s/internal/facilities/%d/courts?%s", c.baseURL, facilityID, query.Encode())

	var courts []Court
	if err := c.get(ctx, endpoint, ErrFacilityNotFound, &courts); err != nil {
		return nil, err
	}

	result := make([]*domain.Court, 0, len(courts))
	for i := range courts {
		result = append(result, courts[i].toDomain())
	}

	c.log.Info("FacilityService: listed %d courts for facility=%d sport=%d", len(result), facilityID, sportID)
	return result, nil
}

// get выполняет GET запрос и декодирует JSON ответ в out
func (c *Client) get(ctx context.Context, endpoint string, notFound error, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("FacilityService: request %s failed: %v", endpoint, err)
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return fmt.Errorf("%w: invalid id format", ErrInvalidResponse)
	case http.StatusNotFound:
		return notFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
