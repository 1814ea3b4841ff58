package admission

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"modulegate_backend/internal/model"

	"go.uber.org/zap"
)

// ModuleDirectory is the server's module lookup, implemented by apiclient.Client.
type ModuleDirectory interface {
	JoinModule(ctx context.Context, code string) (*model.ModuleView, error)
	GetModule(ctx context.Context, moduleID string) (*model.ModuleView, error)
}

// Resolver turns a typed access code into a module. It only reads.
type Resolver struct {
	Directory ModuleDirectory
	Log       *zap.Logger
}

func NewResolver(dir ModuleDirectory, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{Directory: dir, Log: log}
}

// Resolve normalizes rawCode and looks it up. Malformed input fails with
// ErrCodeInvalid without a request.
func (r *Resolver) Resolve(ctx context.Context, rawCode, studentID string) (*model.ModuleView, error) {
	code, err := model.NormalizeAccessCode(rawCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCodeInvalid, err)
	}

	module, err := r.Directory.JoinModule(ctx, code)
	if err != nil {
		err = lookupError(err)
		r.Log.Debug("access code lookup failed", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	r.Log.Debug("access code resolved",
		zap.String("code", code),
		zap.String("module_id", module.ID),
		zap.String("student_id", studentID))
	return module, nil
}

// ResolveJoinURL accepts a join link such as https://host/join/ABC123 (or just
// its path) and resolves the embedded code exactly like Resolve.
func (r *Resolver) ResolveJoinURL(ctx context.Context, joinURL, studentID string) (*model.ModuleView, error) {
	code, err := CodeFromJoinURL(joinURL)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, code, studentID)
}

// Fetch re-reads a module the student already joined.
func (r *Resolver) Fetch(ctx context.Context, moduleID string) (*model.ModuleView, error) {
	module, err := r.Directory.GetModule(ctx, moduleID)
	if err != nil {
		return nil, lookupError(err)
	}
	return module, nil
}

// CodeFromJoinURL extracts the raw, not yet normalized, code from a join link.
// ?access_code= is accepted as well as the /join/{code} path.
func CodeFromJoinURL(joinURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(joinURL))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCodeInvalid, err)
	}
	if code := u.Query().Get("access_code"); code != "" {
		return code, nil
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "join" {
			return segments[i+1], nil
		}
	}
	return "", fmt.Errorf("%w: no code in %q", ErrCodeInvalid, joinURL)
}
