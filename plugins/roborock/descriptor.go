package roborock

import (
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "gohome.plugins.roborock.v1.S5Service"

	protoPackage = "gohome.plugins.roborock.v1"
	protoPath    = "gohome/plugins/roborock/v1/s5.proto"
	structType   = ".google.protobuf.Struct"
)

// s5Methods lists every unary RPC of S5Service. All of them take and return
// google.protobuf.Struct.
var s5Methods = []string{
	"AddTimer",
	"DeleteTimer",
	"ToggleTimer",
	"SetLabStatus",
	"SavePersistentData",
	"GetBackupMaps",
	"RestoreBackupMap",
	"SetFanSpeed",
	"GetCapabilities",
	"GetStatus",
}

var (
	descriptorOnce sync.Once
	descriptorErr  error
)

// registerDescriptor adds s5.proto to the global registry so server
// reflection and grpcurl can resolve S5Service.
func registerDescriptor() error {
	descriptorOnce.Do(func() {
		if _, err := protoregistry.GlobalFiles.FindFileByPath(protoPath); err == nil {
			return
		}
		fd, err := protodesc.NewFile(s5FileDescriptor(), protoregistry.GlobalFiles)
		if err != nil {
			descriptorErr = err
			return
		}
		descriptorErr = protoregistry.GlobalFiles.RegisterFile(fd)
	})
	return descriptorErr
}

func s5FileDescriptor() *descriptorpb.FileDescriptorProto {
	methods := make([]*descriptorpb.MethodDescriptorProto, 0, len(s5Methods))
	for _, name := range s5Methods {
		methods = append(methods, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(structType),
			OutputType: proto.String(structType),
		})
	}
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(protoPath),
		Package:    proto.String(protoPackage),
		Syntax:     proto.String("proto3"),
		Dependency: []string{structpb.File_google_protobuf_struct_proto.Path()},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name:   proto.String("S5Service"),
			Method: methods,
		}},
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/joshp123/gohome-s5/plugins/roborock"),
		},
	}
}
