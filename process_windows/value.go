//go:build windows

package process_windows

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aarondl/opt/null"
)

// variantString renders a WMI property value. Empty and missing values are
// null, matching what WMI reports for properties the caller may not read.
func variantString(v interface{}) null.Val[string] {
	switch value := v.(type) {
	case nil:
		return null.Val[string]{}
	case string:
		if value == "" {
			return null.Val[string]{}
		}
		return null.From(value)
	case bool:
		return null.From(strconv.FormatBool(value))
	case int8, int16, int32, int64, int:
		return null.From(fmt.Sprintf("%d", value))
	case uint8, uint16, uint32, uint64, uint:
		return null.From(fmt.Sprintf("%d", value))
	case float32:
		return null.From(strconv.FormatFloat(float64(value), 'f', -1, 32))
	case float64:
		return null.From(strconv.FormatFloat(value, 'f', -1, 64))
	case time.Time:
		return null.From(value.UTC().Format(time.RFC3339))
	default:
		return null.From(fmt.Sprint(value))
	}
}

// variantInt reads an integer property such as ProcessId
func variantInt(v interface{}) (int64, bool) {
	switch value := v.(type) {
	case int8:
		return int64(value), true
	case int16:
		return int64(value), true
	case int32:
		return int64(value), true
	case int64:
		return value, true
	case int:
		return int64(value), true
	case uint8:
		return int64(value), true
	case uint16:
		return int64(value), true
	case uint32:
		return int64(value), true
	case uint64:
		return int64(value), true
	case uint:
		return int64(value), true
	case string:
		n, err := strconv.ParseInt(value, 10, 64)
		return n, err == nil
	}
	return 0, false
}
