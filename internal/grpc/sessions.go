package grpc

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// Service and method names of the session server. Messages are
// google.protobuf.Struct, so no generated code is involved.
const (
	ServiceName = "shell.Sessions"

	MethodOpenGrain = "OpenGrain"
	MethodOpenToken = "OpenToken"
)

// Field names inside request and response structs
const (
	fieldGrainID    = "grain_id"
	fieldToken      = "token"
	fieldIncognito  = "incognito"
	fieldSessionID  = "session_id"
	fieldTitle      = "title"
	fieldRedirectTo = "redirect_to_grain"
)

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func encodeOutcome(outcome types.OpenOutcome) (*structpb.Struct, error) {
	switch o := outcome.(type) {
	case types.Opened:
		fields := map[string]any{
			fieldGrainID:   o.GrainID,
			fieldSessionID: o.SessionID,
		}
		if o.Title != "" {
			fields[fieldTitle] = o.Title
		}
		return structpb.NewStruct(fields)
	case types.Redirected:
		return structpb.NewStruct(map[string]any{fieldRedirectTo: o.GrainID})
	default:
		return nil, fmt.Errorf("unknown open outcome %T", outcome)
	}
}

func decodeOutcome(msg *structpb.Struct) (types.OpenOutcome, error) {
	fields := msg.GetFields()
	if grainID := stringField(fields, fieldRedirectTo); grainID != "" {
		return types.Redirected{GrainID: grainID}, nil
	}

	sessionID := stringField(fields, fieldSessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("open result has neither %s nor %s", fieldSessionID, fieldRedirectTo)
	}
	return types.Opened{
		GrainID:   stringField(fields, fieldGrainID),
		SessionID: sessionID,
		Title:     stringField(fields, fieldTitle),
	}, nil
}

func stringField(fields map[string]*structpb.Value, name string) string {
	return fields[name].GetStringValue()
}
