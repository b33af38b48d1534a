package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"school-auth/internal/domain"
)

// StaffDirectory busca docentes en el listado masivo de trabajadores.
type StaffDirectory struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewStaffDirectory construye el cliente HTTP del listado de personal.
func NewStaffDirectory(url string, timeout time.Duration, logger *zap.Logger) *StaffDirectory {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffDirectory{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type workersResponse struct {
	Value []workerRecord `json:"value"`
}

type workerRecord struct {
	Metadata struct {
		ID string `json:"id"`
	} `json:"__metadata"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	ClassStr string `json:"classStr"`
}

// Resolve descarga el snapshot del personal y busca el email. El snapshot no
// se guarda entre llamadas.
func (d *StaffDirectory) Resolve(ctx context.Context, email string) (domain.Person, error) {
	workers, err := d.fetch(ctx)
	if err != nil {
		d.logger.Warn("staff directory fetch failed", zap.Error(err))
		return domain.Person{}, unavailable(err)
	}

	for _, w := range workers {
		if !strings.EqualFold(strings.TrimSpace(w.Email), email) {
			continue
		}
		return domain.Person{
			ExternalID:    w.Metadata.ID,
			DisplayName:   strings.TrimSpace(w.Name),
			Image:         w.Image,
			LeaderClasses: parseClasses(w.ClassStr),
			Role:          domain.SchoolRoleTeacher,
		}, nil
	}
	return domain.Person{}, ErrNotFound
}

func (d *StaffDirectory) fetch(ctx context.Context) ([]workerRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("staff directory http error: status=%d", resp.StatusCode)
	}

	var wr workersResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return wr.Value, nil
}

func parseClasses(classStr string) []string {
	if strings.TrimSpace(classStr) == "" {
		return nil
	}
	var classes []string
	for _, part := range strings.Split(classStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			classes = append(classes, part)
		}
	}
	return classes
}
