// Package connector abstracts the model backend that produces the text a
// GenerateAndVerify run audits. The in-memory double lets tests and
// VerifyOnly-style callers avoid a live model service entirely.
package connector

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// ModelConnector produces the analyzed text for a GenerateAndVerify run
// from a prompt.
type ModelConnector interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// generateMethod is the fully-qualified gRPC method the connector invokes.
// The service takes and returns a google.protobuf.Struct so the client
// needs no generated message types of its own.
const generateMethod = "/chemverify.ModelService/Generate"

// GRPCConnector calls a remote model service over gRPC, passing a
// structpb.Struct request/response pair instead of hand-generated
// protobuf stubs.
type GRPCConnector struct {
	conn  *grpc.ClientConn
	model string
}

// NewGRPCConnector dials addr and configures the connector to request the
// given model name.
func NewGRPCConnector(addr, model string) (*GRPCConnector, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connector: failed to connect to model service: %w", err)
	}
	return &GRPCConnector{conn: conn, model: model}, nil
}

// Close closes the underlying gRPC connection.
func (c *GRPCConnector) Close() error {
	return c.conn.Close()
}

// Generate sends prompt to the remote model service and returns its text
// response.
func (c *GRPCConnector) Generate(ctx context.Context, prompt string) (string, error) {
	req, err := structpb.NewStruct(map[string]any{
		"prompt": prompt,
		"model":  c.model,
	})
	if err != nil {
		return "", fmt.Errorf("connector: building request: %w", err)
	}

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, generateMethod, req, resp); err != nil {
		return "", fmt.Errorf("connector: Generate RPC failed: %w", err)
	}

	textVal, ok := resp.Fields["text"]
	if !ok {
		return "", fmt.Errorf("connector: response missing \"text\" field")
	}
	return textVal.GetStringValue(), nil
}

// StaticConnector is a deterministic in-memory double: it returns a fixed
// script of responses in call order, for tests and offline operation.
type StaticConnector struct {
	responses []string
	calls     int
	err       error
}

// NewStaticConnector returns a connector that replies with responses in
// order, repeating the last one once exhausted.
func NewStaticConnector(responses ...string) *StaticConnector {
	return &StaticConnector{responses: responses}
}

// WithError makes every call to Generate return err instead of a response.
func (c *StaticConnector) WithError(err error) *StaticConnector {
	c.err = err
	return c
}

// Generate returns the next scripted response.
func (c *StaticConnector) Generate(_ context.Context, _ string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if len(c.responses) == 0 {
		return "", nil
	}
	idx := c.calls
	if idx >= len(c.responses) {
		idx = len(c.responses) - 1
	}
	c.calls++
	return c.responses[idx], nil
}

// Calls reports how many times Generate has been invoked.
func (c *StaticConnector) Calls() int { return c.calls }
