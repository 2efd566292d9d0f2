package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"lesson-bot/logger"
)

const (
	// DefaultBaseURL - адрес скачивания файлов Google Drive
	DefaultBaseURL = "https://drive.google.com"
	userAgent      = "Mozilla/5.0 (compatible; LessonBot/1.0)"
	// maxDocumentSize ограничивает размер скачиваемого файла
	maxDocumentSize = 50 << 20
)

// ErrStatus - источник ответил не 200
var ErrStatus = errors.New("unexpected response status")

// Drive скачивает публичный файл с Google Drive. Для больших файлов Drive
// сначала отдает предупреждение и cookie download_warning*; значение cookie
// передается вторым запросом в параметре confirm.
type Drive struct {
	BaseURL string
	FileID  string
	Client  *http.Client
	log     logger.Logger
}

// NewDrive создает загрузчик для файла fileID
func NewDrive(baseURL, fileID string, log logger.Logger) (*Drive, error) {
	if fileID == "" {
		return nil, errors.New("drive file id is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Drive{
		BaseURL: strings.TrimRight(baseURL, "/"),
		FileID:  fileID,
		log:     log,
	}, nil
}

// Fetch скачивает документ. Таймаут задается контекстом.
func (d *Drive) Fetch(ctx context.Context) ([]byte, error) {
	client, err := d.client()
	if err != nil {
		return nil, err
	}

	downloadURL := fmt.Sprintf("%s/uc?id=%s&export=download", d.BaseURL, url.QueryEscape(d.FileID))
	resp, err := d.get(ctx, client, downloadURL)
	if err != nil {
		return nil, err
	}

	if token := confirmToken(resp.Cookies()); token != "" {
		drain(resp)
		d.log.Debugf("🔐 Drive asked for download confirmation")
		resp, err = d.get(ctx, client, downloadURL+"&confirm="+url.QueryEscape(token))
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	d.log.Infof("⬇️ Downloaded schedule document (%d bytes)", len(data))
	return data, nil
}

// client - новый cookie jar на каждую загрузку: токен подтверждения
// не должен переживать один цикл скачивания
func (d *Drive) client() (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	base := d.Client
	if base == nil {
		base = http.DefaultClient
	}
	return &http.Client{
		Transport:     base.Transport,
		CheckRedirect: base.CheckRedirect,
		Jar:           jar,
		Timeout:       base.Timeout,
	}, nil
}

func (d *Drive) get(ctx context.Context, client *http.Client, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download document: %w", err)
	}
	return resp, nil
}

func confirmToken(cookies []*http.Cookie) string {
	for _, c := range cookies {
		if strings.HasPrefix(c.Name, "download_warning") {
			return c.Value
		}
	}
	return ""
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}
