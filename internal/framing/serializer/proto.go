package serializer

import (
	"google.golang.org/protobuf/proto"

	"github.com/lk2023060901/protoframe-go/pkg/util/merr"
)

// ProtoSerializer 使用 Protobuf 编解码帧载荷。
//
// 注意：传入/传出的对象必须实现 proto.Message。
type ProtoSerializer struct{}

// 编译期断言：确保 ProtoSerializer 实现了 Serializer 接口。
var _ Serializer = (*ProtoSerializer)(nil)

func (ProtoSerializer) Marshal(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, merr.WrapErrParameterInvalid("proto.Message", v, "proto payload")
	}
	return proto.Marshal(msg)
}

func (ProtoSerializer) Unmarshal(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return merr.WrapErrParameterInvalid("proto.Message", v, "proto payload")
	}
	return proto.Unmarshal(data, msg)
}
