package exchange

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"respa-server/internal/infrastructure/config"
	otelinfra "respa-server/internal/infrastructure/observability/otel"
)

const (
	// Encoding 送受信する文書の文字コード
	Encoding = "UTF-8"

	defaultRetries   = 3
	defaultTimeout   = 10 * time.Second
	retryWaitTime    = 300 * time.Millisecond
	retryMaxWaitTime = 5 * time.Second
	streamChunkSize  = 4096
)

var envelopeEnd = []byte("</Envelope>")

// Session Basic認証付きのEWS SOAPセッション
type Session struct {
	url    string
	http   *resty.Client
	logger *otelinfra.Logger
	tracer trace.Tracer
}

// NewSession 新しいSessionを作成
// 接続エラーのみ指数バックオフで再試行し、HTTPステータスでは再試行しない
func NewSession(cfg *config.ExchangeConfig, logger *otelinfra.Logger) *Session {
	retries := cfg.Retries
	if retries <= 0 {
		retries = defaultRetries
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBasicAuth(cfg.Username, cfg.Password).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(retryMaxWaitTime).
		AddRetryCondition(isConnectError).
		SetLogger(logger.Printf("exchange")).
		SetHeader("Accept", "text/xml").
		SetHeader("Content-Type", "text/xml; charset="+Encoding)

	return &Session{
		url:    cfg.URL,
		http:   client,
		logger: logger,
		tracer: otel.Tracer("exchange-session"),
	}
}

// isConnectError 接続確立前の失敗のみ再試行する。送信後の読み込み失敗は再送しない
func isConnectError(_ *resty.Response, err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// Soap 要求を送信し、応答を解析して返す
func (s *Session) Soap(ctx context.Context, req Request) (*Response, error) {
	ctx, span := s.tracer.Start(ctx, "exchange.Soap")
	defer span.End()

	body, err := s.prepare(ctx, req)
	if err != nil {
		s.fail(span, err)
		return nil, err
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(s.url)
	if err != nil {
		err = fmt.Errorf("failed to send soap request: %w", err)
		s.fail(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))

	content := resp.Body()
	if resp.StatusCode() == http.StatusInternalServerError {
		// 500はフォールトを含む場合がある
		var fault *SoapFault
		if _, err := s.process(ctx, content); errors.As(err, &fault) {
			s.fail(span, err)
			return nil, err
		}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		err := &StatusError{StatusCode: resp.StatusCode(), Body: content}
		s.fail(span, err)
		return nil, err
	}

	parsed, err := s.process(ctx, content)
	if err != nil {
		s.fail(span, err)
		return nil, err
	}
	return parsed, nil
}

// SoapStream 要求を送信し、ストリーミング応答の各エンベロープをfnに渡す
func (s *Session) SoapStream(ctx context.Context, req Request, fn func(*Response) error) error {
	ctx, span := s.tracer.Start(ctx, "exchange.SoapStream")
	defer span.End()

	body, err := s.prepare(ctx, req)
	if err != nil {
		s.fail(span, err)
		return err
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(body).
		SetDoNotParseResponse(true).
		Post(s.url)
	if err != nil {
		err = fmt.Errorf("failed to open soap stream: %w", err)
		s.fail(span, err)
		return err
	}
	raw := resp.RawBody()
	defer raw.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		content, _ := io.ReadAll(raw)
		err := &StatusError{StatusCode: resp.StatusCode(), Body: content}
		s.fail(span, err)
		return err
	}

	if err := s.readStream(ctx, raw, fn); err != nil {
		s.fail(span, err)
		return err
	}
	return nil
}

func (s *Session) readStream(ctx context.Context, r io.Reader, fn func(*Response) error) error {
	var pending []byte
	chunk := make([]byte, streamChunkSize)

	for {
		n, readErr := r.Read(chunk)
		if data := bytes.TrimSpace(chunk[:n]); len(data) > 0 {
			pending = append(pending, data...)
			if bytes.HasSuffix(pending, envelopeEnd) {
				content := pending
				pending = nil

				parsed, err := s.process(ctx, content)
				if err != nil {
					return err
				}
				if err := fn(parsed); err != nil {
					return err
				}
			}
		}

		switch {
		case readErr == nil:
			continue
		case errors.Is(readErr, io.EOF):
			return nil
		case errors.Is(readErr, io.ErrUnexpectedEOF):
			s.logger.Warn(ctx, "Incomplete read from exchange stream", map[string]interface{}{
				"pending_bytes": len(pending),
			})
			return ErrIncompleteRead
		default:
			return fmt.Errorf("failed to read soap stream: %w", readErr)
		}
	}
}

func (s *Session) prepare(ctx context.Context, req Request) ([]byte, error) {
	body, err := req.Envelope()
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "Sending soap request", map[string]interface{}{
		"url":  s.url,
		"body": string(body),
	})
	return body, nil
}

func (s *Session) process(ctx context.Context, content []byte) (*Response, error) {
	parsed, err := parseResponse(content, func() {
		s.logger.Debug(ctx, "Multiple envelopes in response, parsing in recover mode", map[string]interface{}{
			"body": string(content),
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "Received soap response", map[string]interface{}{
		"body": string(content),
	})
	return parsed, nil
}

func (s *Session) fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
