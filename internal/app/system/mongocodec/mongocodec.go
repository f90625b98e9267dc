// Package mongocodec registers BSON codecs for the value types the domain
// models use: decimal amounts and calendar days.
//
// Amounts are stored as Decimal128. Older documents holding doubles, ints
// or numeric strings still decode. Calendar days are stored as
// "YYYY-MM-DD" strings so that equality filters are exact and readable in
// the shell. The zero day is stored as "none".
package mongocodec

import (
	"fmt"
	"reflect"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NoDate is the stored form of the zero civil.Date.
const NoDate = "none"

var (
	tDecimal = reflect.TypeOf(decimal.Decimal{})
	tDate    = reflect.TypeOf(civil.Date{})
)

// Registry returns a BSON registry with the default codecs plus the
// decimal and civil.Date codecs.
func Registry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	Register(reg)
	return reg
}

// Register adds the codecs to an existing registry.
func Register(reg *bsoncodec.Registry) {
	reg.RegisterTypeEncoder(tDecimal, bsoncodec.ValueEncoderFunc(encodeDecimal))
	reg.RegisterTypeDecoder(tDecimal, bsoncodec.ValueDecoderFunc(decodeDecimal))
	reg.RegisterTypeEncoder(tDate, bsoncodec.ValueEncoderFunc(encodeDate))
	reg.RegisterTypeDecoder(tDate, bsoncodec.ValueDecoderFunc(decodeDate))
}

func encodeDecimal(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != tDecimal {
		return bsoncodec.ValueEncoderError{Name: "DecimalEncodeValue", Types: []reflect.Type{tDecimal}, Received: val}
	}
	d := val.Interface().(decimal.Decimal)
	d128, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return fmt.Errorf("encode decimal %s: %w", d.String(), err)
	}
	return vw.WriteDecimal128(d128)
}

func decodeDecimal(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != tDecimal {
		return bsoncodec.ValueDecoderError{Name: "DecimalDecodeValue", Types: []reflect.Type{tDecimal}, Received: val}
	}

	var d decimal.Decimal
	switch vr.Type() {
	case bsontype.Decimal128:
		d128, err := vr.ReadDecimal128()
		if err != nil {
			return err
		}
		parsed, err := decimal.NewFromString(d128.String())
		if err != nil {
			return fmt.Errorf("decode decimal128 %s: %w", d128.String(), err)
		}
		d = parsed
	case bsontype.Double:
		f, err := vr.ReadDouble()
		if err != nil {
			return err
		}
		d = decimal.NewFromFloat(f)
	case bsontype.Int32:
		i, err := vr.ReadInt32()
		if err != nil {
			return err
		}
		d = decimal.NewFromInt32(i)
	case bsontype.Int64:
		i, err := vr.ReadInt64()
		if err != nil {
			return err
		}
		d = decimal.NewFromInt(i)
	case bsontype.String:
		s, err := vr.ReadString()
		if err != nil {
			return err
		}
		if s != "" {
			parsed, err := decimal.NewFromString(s)
			if err != nil {
				return fmt.Errorf("decode decimal string %q: %w", s, err)
			}
			d = parsed
		}
	case bsontype.Null:
		if err := vr.ReadNull(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot decode %v into decimal.Decimal", vr.Type())
	}

	val.Set(reflect.ValueOf(d))
	return nil
}

func encodeDate(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != tDate {
		return bsoncodec.ValueEncoderError{Name: "DateEncodeValue", Types: []reflect.Type{tDate}, Received: val}
	}
	return vw.WriteString(FormatDate(val.Interface().(civil.Date)))
}

func decodeDate(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != tDate {
		return bsoncodec.ValueDecoderError{Name: "DateDecodeValue", Types: []reflect.Type{tDate}, Received: val}
	}

	var d civil.Date
	switch vr.Type() {
	case bsontype.String:
		s, err := vr.ReadString()
		if err != nil {
			return err
		}
		parsed, err := ParseDate(s)
		if err != nil {
			return err
		}
		d = parsed
	case bsontype.DateTime:
		ms, err := vr.ReadDateTime()
		if err != nil {
			return err
		}
		d = civil.DateOf(time.UnixMilli(ms).UTC())
	case bsontype.Null:
		if err := vr.ReadNull(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot decode %v into civil.Date", vr.Type())
	}

	val.Set(reflect.ValueOf(d))
	return nil
}

// FormatDate returns the stored form of d.
func FormatDate(d civil.Date) string {
	if d.IsZero() {
		return NoDate
	}
	return d.String()
}

// ParseDate reads the stored form of a day. "none" and "" are the zero day.
func ParseDate(s string) (civil.Date, error) {
	if s == "" || s == NoDate {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("decode date %q: %w", s, err)
	}
	return d, nil
}
