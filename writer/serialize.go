package writer

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
)

func appendObject(buf *bytes.Buffer, v interface{}) {
	switch o := v.(type) {
	case nil:
		buf.WriteString("null")
	case Name:
		buf.WriteByte('/')
		buf.WriteString(string(o))
	case Ref:
		fmt.Fprintf(buf, "%d %d R", o.Num, o.Gen)
	case bool:
		if o {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case int:
		buf.WriteString(strconv.Itoa(o))
	case int64:
		buf.WriteString(strconv.FormatInt(o, 10))
	case float64:
		buf.WriteString(formatNumber(o))
	case string:
		appendString(buf, []byte(o))
	case []byte:
		appendString(buf, o)
	case Array:
		buf.WriteByte('[')
		for i, item := range o {
			if i > 0 {
				buf.WriteByte(' ')
			}
			appendObject(buf, item)
		}
		buf.WriteByte(']')
	case Dict:
		appendDict(buf, o)
	case *Stream:
		dict := Dict{}
		for k, val := range o.Dict {
			dict[k] = val
		}
		dict["Length"] = len(o.Data)
		appendDict(buf, dict)
		buf.WriteString("\nstream\n")
		buf.Write(o.Data)
		buf.WriteString("\nendstream")
	default:
		buf.WriteString("null")
	}
}

func appendDict(buf *bytes.Buffer, d Dict) {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	buf.WriteString("<<")
	for _, k := range keys {
		buf.WriteByte('/')
		buf.WriteString(k)
		buf.WriteByte(' ')
		appendObject(buf, d[Name(k)])
	}
	buf.WriteString(">>")
}

// appendString writes a literal string, escaping the delimiters.
func appendString(buf *bytes.Buffer, s []byte) {
	buf.WriteByte('(')
	for _, b := range s {
		switch b {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(b)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			buf.WriteByte(b)
		}
	}
	buf.WriteByte(')')
}

// formatNumber renders a real without an exponent, which PDF forbids,
// trimmed to five decimals.
func formatNumber(f float64) string {
	f = math.Round(f*1e5) / 1e5
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
