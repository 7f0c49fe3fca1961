package codec

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	collcodec "cosmossdk.io/collections/codec"
)

// RLPValue returns a collections value codec storing T in its RLP encoding. T must be
// a struct RLP can encode; JSON is used for genesis import and export.
func RLPValue[T any]() collcodec.ValueCodec[T] {
	return rlpValue[T]{}
}

type rlpValue[T any] struct{}

func (rlpValue[T]) Encode(value T) ([]byte, error) {
	return rlp.EncodeToBytes(&value)
}

func (rlpValue[T]) Decode(b []byte) (T, error) {
	var value T
	if err := rlp.DecodeBytes(b, &value); err != nil {
		return value, fmt.Errorf("%s: %w", reflect.TypeOf(value), err)
	}
	return value, nil
}

func (rlpValue[T]) EncodeJSON(value T) ([]byte, error) {
	return json.Marshal(value)
}

func (rlpValue[T]) DecodeJSON(b []byte) (T, error) {
	var value T
	err := json.Unmarshal(b, &value)
	return value, err
}

func (rlpValue[T]) Stringify(value T) string {
	return fmt.Sprintf("%+v", value)
}

func (rlpValue[T]) ValueType() string {
	var value T
	return "rlp/" + reflect.TypeOf(value).String()
}
