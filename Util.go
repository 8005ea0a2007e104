package goghostex

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

func ToFloat64(v interface{}) float64 {
	if v == nil {
		return 0.0
	}

	switch v.(type) {
	case float64:
		return v.(float64)
	case string:
		vStr := v.(string)
		vF, _ := strconv.ParseFloat(vStr, 64)
		return vF
	default:
		panic("to float64 error.")
	}
}

func UUID() string {
	return strings.Replace(uuid.New().String(), "-", "", 32)
}

func GetParamHmacSHA256Sign(secret, params string) (string, error) {
	mac := hmac.New(sha256.New, []byte(secret))
	if _, err := mac.Write([]byte(params)); err != nil {
		return "", err
	}
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// BuildSignedQuery appends recvWindow, timestamp and the signature of the
// encoded query. The signature is always the last parameter.
func BuildSignedQuery(params url.Values, secret string, recvWindow int64, now time.Time) (string, error) {
	var values = url.Values{}
	for k, v := range params {
		values[k] = append([]string(nil), v...)
	}
	if recvWindow > 0 {
		values.Set("recvWindow", strconv.FormatInt(recvWindow, 10))
	}
	values.Set("timestamp", strconv.FormatInt(now.UnixNano()/int64(time.Millisecond), 10))

	var payload = values.Encode()
	sign, err := GetParamHmacSHA256Sign(secret, payload)
	if err != nil {
		return "", fmt.Errorf("sign query: %w", err)
	}
	return payload + "&signature=" + sign, nil
}
