package roborock

import (
	context "context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// S5ServiceServer is the server API for S5Service.
type S5ServiceServer interface {
	AddTimer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTimer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleTimer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetLabStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SavePersistentData(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBackupMaps(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RestoreBackupMap(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetFanSpeed(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCapabilities(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type service struct {
	adapter *S5
	poller  *StatusPoller
}

var _ S5ServiceServer = (*service)(nil)

type unaryHandler func(*service, context.Context, *structpb.Struct) (*structpb.Struct, error)

var s5ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*S5ServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("AddTimer", (*service).AddTimer),
		unary("DeleteTimer", (*service).DeleteTimer),
		unary("ToggleTimer", (*service).ToggleTimer),
		unary("SetLabStatus", (*service).SetLabStatus),
		unary("SavePersistentData", (*service).SavePersistentData),
		unary("GetBackupMaps", (*service).GetBackupMaps),
		unary("RestoreBackupMap", (*service).RestoreBackupMap),
		unary("SetFanSpeed", (*service).SetFanSpeed),
		unary("GetCapabilities", (*service).GetCapabilities),
		unary("GetStatus", (*service).GetStatus),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: protoPath,
}

func unary(name string, h unaryHandler) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return h(srv.(*service), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return h(srv.(*service), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// RegisterS5Service registers S5Service and its descriptor on server.
func RegisterS5Service(server *grpc.Server, adapter *S5, poller *StatusPoller) error {
	if err := registerDescriptor(); err != nil {
		return fmt.Errorf("register s5 descriptor: %w", err)
	}
	server.RegisterService(&s5ServiceDesc, &service{adapter: adapter, poller: poller})
	return nil
}

func (s *service) AddTimer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireAdapter(); err != nil {
		return nil, err
	}
	id, err := s.adapter.AddTimer(ctx, stringField(req, "cron"))
	if err != nil {
		return nil, mapClientError("add timer", err)
	}
	return newStruct(map[string]any{"id": id})
}

func (s *service) DeleteTimer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireAdapter(); err != nil {
		return nil, err
	}
	if err := s.adapter.DeleteTimer(ctx, stringField(req, "id")); err != nil {
		return nil, mapClientError("delete timer", err)
	}
	return &structpb.Struct{}, nil
}

func (s *service) ToggleTimer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireAdapter(); err != nil {
		return nil, err
	}
	if err := s.adapter.ToggleTimer(ctx, stringField(req, "id"), boolField(req, "enabled")); err != nil {
		return nil, mapClientError("toggle timer", err)
	}
	return &structpb.Struct{}, nil
}

func (s *service) SetLabStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireAdapter(); err != nil {
		return nil, err
	}
	if err := s.adapter.SetLabStatus(ctx, boolField(req, "enabled")); err != nil {
		return nil, mapClientError("set lab status", err)
	}
	return &structpb.Struct{}, nil
}

// SavePersistentData takes markers as a list value, or as a JSON string
// holding the list.
func (s *service) SavePersistentData(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireAdapter(); err != nil {
		return nil, err
	}
	raw, err := markersJSON(req.GetFields()["markers"])
	if err != nil {
		return nil, mapClientError("save persistent data", err)
	}
	markers, err := ParsePersistentData(raw)
	if err != nil {
		return nil, mapClientError("save persistent data", err)
	}
	if err := s.adapter.SavePersistentData(ctx, markers); err != nil {
		return nil, mapClientError("save persistent data", err)
	}
	return newStruct(map[string]any{"weight": MarkerWeight(markers)})
}

func (s *service) GetBackupMaps(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireAdapter(); err != nil {
		return nil, err
	}
	backups, err := s.adapter.GetBackupMaps(ctx)
	if err != nil {
		return nil, mapClientError("get backup maps", err)
	}
	items := make([]any, 0, len(backups))
	for _, backup := range backups {
		items = append(items, map[string]any{
			"id":           backup.ID,
			"timestamp":    backup.Timestamp.UTC().Format(time.RFC3339Nano),
			"timestamp_ms": backup.Timestamp.UnixMilli(),
		})
	}
	return newStruct(map[string]any{"maps": items})
}

func (s *service) RestoreBackupMap(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireAdapter(); err != nil {
		return nil, err
	}
	result, err := s.adapter.RestoreBackupMap(ctx, BackupMap{ID: stringField(req, "id")})
	if err != nil {
		return nil, mapClientError("restore backup map", err)
	}
	value, err := structpb.NewValue(result)
	if err != nil {
		value = structpb.NewStringValue(fmt.Sprint(result))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{"result": value}}, nil
}

func (s *service) SetFanSpeed(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireAdapter(); err != nil {
		return nil, err
	}
	level, err := ParseFanSpeed(stringField(req, "level"))
	if err != nil {
		return nil, mapClientError("set fan speed", err)
	}
	if err := s.adapter.SetFanSpeed(ctx, level); err != nil {
		return nil, mapClientError("set fan speed", err)
	}
	spec, _ := s.adapter.FanSpeeds().Lookup(level)
	return newStruct(map[string]any{"level": string(level), "label": spec.Label, "value": spec.Value})
}

func (s *service) GetCapabilities(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireAdapter(); err != nil {
		return nil, err
	}
	return newStruct(capabilitiesView(s.adapter.Capabilities()))
}

func (s *service) GetStatus(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.requireAdapter(); err != nil {
		return nil, err
	}
	if s.poller == nil {
		return nil, status.Error(codes.FailedPrecondition, "status poller not configured")
	}
	view, err := lastStatusView(s.poller)
	if err != nil {
		return nil, mapClientError("get status", err)
	}
	return newStruct(view)
}

func (s *service) requireAdapter() error {
	if s.adapter == nil {
		return status.Error(codes.FailedPrecondition, "roborock s5 adapter not configured")
	}
	return nil
}

func mapClientError(action string, err error) error {
	var devErr *DeviceError
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return status.Errorf(codes.InvalidArgument, "%s: %v", action, err)
	case errors.Is(err, ErrCapacityExceeded):
		return status.Errorf(codes.ResourceExhausted, "%s: %v", action, err)
	case errors.Is(err, ErrNotSupported):
		return status.Errorf(codes.Unimplemented, "%s: %v", action, err)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s: %v", action, err)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s: %v", action, err)
	case errors.As(err, &devErr):
		return status.Errorf(codes.FailedPrecondition, "%s: %v", action, err)
	}
	return status.Errorf(codes.Unavailable, "%s: %v", action, err)
}

// capabilitiesView is shared by GetCapabilities and the HTTP endpoint.
func capabilitiesView(caps Capabilities) map[string]any {
	speeds := make([]any, 0, caps.FanSpeeds.Len())
	for _, level := range caps.FanSpeeds.Levels() {
		spec, _ := caps.FanSpeeds.Lookup(level)
		speeds = append(speeds, map[string]any{
			"level": string(level),
			"label": spec.Label,
			"value": spec.Value,
		})
	}
	return map[string]any{
		"msg_ver":       caps.MsgVer,
		"supports_gen3": caps.SupportsGen3,
		"fan_speeds":    speeds,
	}
}

func statusView(statusData Status) map[string]any {
	return map[string]any{
		"state":           statusData.State,
		"battery_percent": statusData.BatteryPercent,
		"error_code":      statusData.ErrorCode,
		"fan_power":       statusData.FanPower,
		"lab_status":      statusData.LabStatus,
		"msg_ver":         statusData.MsgVer,
	}
}

var errNoStatus = errors.New("no status polled yet")

// lastStatusView renders the poller's last status. It never contacts the device.
func lastStatusView(poller *StatusPoller) (map[string]any, error) {
	statusData, at, observed, err := poller.Last()
	if !observed {
		if err == nil {
			err = errNoStatus
		}
		return nil, err
	}
	view := statusView(statusData)
	view["polled_at"] = at.UTC().Format(time.RFC3339)
	if err != nil {
		view["last_error"] = err.Error()
	}
	return view, nil
}

func markersJSON(value *structpb.Value) ([]byte, error) {
	if value == nil {
		return nil, fmt.Errorf("markers is required: %w", ErrInvalidArgument)
	}
	if text, ok := value.GetKind().(*structpb.Value_StringValue); ok {
		return []byte(text.StringValue), nil
	}
	raw, err := protojson.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode markers: %w", ErrInvalidArgument)
	}
	return raw, nil
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func stringField(req *structpb.Struct, name string) string {
	value := req.GetFields()[name]
	switch kind := value.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue
	case *structpb.Value_NumberValue:
		return stringFrom(kind.NumberValue)
	}
	return ""
}

func boolField(req *structpb.Struct, name string) bool {
	return req.GetFields()[name].GetBoolValue()
}
