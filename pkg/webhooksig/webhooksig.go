// Package webhooksig проверка HMAC-подписей webhook-запросов.
//
// Поддерживается формат заголовка "t=<unix>,v1=<hex>", где v1 это
// HMAC-SHA256 от строки "<t>.<raw body>". Проверка выполняется
// по сырым байтам тела до какого-либо JSON-парсинга.
package webhooksig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingHeader возвращается при отсутствии заголовка подписи
	ErrMissingHeader = errors.New("webhooksig: missing signature header")

	// ErrInvalidHeader возвращается при некорректном формате заголовка подписи
	ErrInvalidHeader = errors.New("webhooksig: invalid signature header format")

	// ErrMismatch возвращается при несовпадении вычисленной и переданной подписей
	ErrMismatch = errors.New("webhooksig: signature mismatch")

	// ErrTimestampTooOld возвращается, когда timestamp подписи старше допустимого окна
	// (защита от replay-атак)
	ErrTimestampTooOld = errors.New("webhooksig: timestamp outside tolerance window")
)

// Options опции проверки подписи
type Options struct {
	// Tolerance максимальный возраст подписи; 0 отключает проверку timestamp
	Tolerance time.Duration
	// Now провайдер текущего времени (для тестов); nil = time.Now
	Now func() time.Time
}

// Verify проверяет подпись сырого тела запроса.
// Сравнение подписей выполняется за константное время.
func Verify(rawBody []byte, signatureHeader string, secret string, opts Options) error {
	if signatureHeader == "" {
		return ErrMissingHeader
	}

	ts, gotSig, err := parseHeader(signatureHeader)
	if err != nil {
		return err
	}

	if opts.Tolerance > 0 {
		now := time.Now()
		if opts.Now != nil {
			now = opts.Now()
		}
		age := now.Sub(time.Unix(ts, 0))
		if age > opts.Tolerance || age < -opts.Tolerance {
			return fmt.Errorf("%w: signed at %d", ErrTimestampTooOld, ts)
		}
	}

	expected := Sign(rawBody, secret, ts)
	if !hmac.Equal([]byte(expected), []byte(gotSig)) {
		return ErrMismatch
	}

	return nil
}

// Sign вычисляет hex-подпись v1 для тела и timestamp
// Используется в тестах и для формирования исходящих подписей
func Sign(rawBody []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = fmt.Fprintf(mac, "%d.", ts)
	_, _ = mac.Write(rawBody)
	return hex.EncodeToString(mac.Sum(nil))
}

// Header формирует значение заголовка подписи для тела и timestamp
func Header(rawBody []byte, secret string, ts int64) string {
	return fmt.Sprintf("t=%d,v1=%s", ts, Sign(rawBody, secret, ts))
}

// parseHeader разбирает заголовок вида "t=<unix>,v1=<hex>"
func parseHeader(header string) (ts int64, sig string, err error) {
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts, err = strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("%w: bad timestamp", ErrInvalidHeader)
			}
		case "v1":
			sig = v
		}
	}

	if ts == 0 || sig == "" {
		return 0, "", ErrInvalidHeader
	}

	return ts, sig, nil
}
