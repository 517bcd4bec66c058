// 变更说明：新增期权合约标识解析，支持 Deribit 风格命名 (BTC-27JUN25-60000-C)。
package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadInstrument 合约标识无法解析
var ErrBadInstrument = errors.New("malformed option instrument")

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
)

// Instrument 解析后的期权合约
type Instrument struct {
	Name       string
	Underlying string
	Expiry     time.Time // 到期日 08:00 UTC
	Strike     float64
	Type       OptionType
}

// ParseInstrument 解析 "BTC-27JUN25-60000-C" 形式的合约标识。
// 到期时间固定为到期日当天 08:00 UTC。
func ParseInstrument(name string) (*Instrument, error) {
	parts := strings.Split(name, "-")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: %q", ErrBadInstrument, name)
	}

	expiry, err := parseExpiry(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadInstrument, name)
	}

	strike, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || strike <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadInstrument, name)
	}

	var typ OptionType
	switch strings.ToUpper(parts[3]) {
	case "C":
		typ = OptionTypeCall
	case "P":
		typ = OptionTypePut
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadInstrument, name)
	}

	return &Instrument{
		Name:       name,
		Underlying: parts[0],
		Expiry:     expiry,
		Strike:     strike,
		Type:       typ,
	}, nil
}

// parseExpiry 解析 "27JUN25" 形式的到期日
func parseExpiry(tag string) (time.Time, error) {
	t, err := time.ParseInLocation("2Jan06", normalizeExpiryTag(tag), time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(8 * time.Hour), nil
}

// normalizeExpiryTag 月份缩写转为 Go 时间布局要求的首字母大写形式
func normalizeExpiryTag(tag string) string {
	upper := strings.ToUpper(tag)
	i := 0
	for i < len(upper) && upper[i] >= '0' && upper[i] <= '9' {
		i++
	}
	if i == 0 || len(upper) < i+3 {
		return tag
	}
	month := upper[i : i+3]
	return upper[:i] + month[:1] + strings.ToLower(month[1:]) + upper[i+3:]
}
