package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"

	"rtcports/internal/ports"
	"rtcports/internal/types"
)

const DefaultRedisPrefix = "rtcports:"

// RedisFramework keeps port profiles and connectors in Redis so that
// separate processes see the same framework state.
//
// Keys:
//
//	<prefix>port:<ref>             JSON port profile
//	<prefix>connector:<id>         JSON connector record
//	<prefix>port-connectors:<ref>  list of connector ids, oldest first
type RedisFramework struct {
	client *backend.Client
	prefix string
}

type RedisOption func(*RedisFramework)

func WithRedisPrefix(prefix string) RedisOption {
	return func(f *RedisFramework) {
		if prefix != "" {
			f.prefix = prefix
		}
	}
}

func NewRedisFramework(address, password string, db int, opts ...RedisOption) *RedisFramework {
	return NewRedisFrameworkFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

func NewRedisFrameworkFromClient(client *backend.Client, opts ...RedisOption) *RedisFramework {
	f := &RedisFramework{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *RedisFramework) portKey(ref string) string {
	return f.prefix + "port:" + ref
}

func (f *RedisFramework) connectorKey(id string) string {
	return f.prefix + "connector:" + id
}

func (f *RedisFramework) portConnectorsKey(ref string) string {
	return f.prefix + "port-connectors:" + ref
}

func redisError(msg string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(msg).
		WithCause(err)
}

func (f *RedisFramework) Register(ctx context.Context, ref string, profile types.PortProfile) (bool, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode port profile").
			WithCause(err)
	}
	created, err := f.client.SetNX(ctx, f.portKey(ref), data, 0).Result()
	if err != nil {
		return false, redisError("failed to register port", err)
	}
	return created, nil
}

func (f *RedisFramework) Object(ctx context.Context, ref string) (ports.PortService, error) {
	n, err := f.client.Exists(ctx, f.portKey(ref)).Result()
	if err != nil {
		return nil, redisError("failed to look up port", err)
	}
	if n == 0 {
		return nil, unknownRef(ref)
	}
	return redisPort{fw: f, ref: ref}, nil
}

func (f *RedisFramework) Close() error {
	return f.client.Close()
}

type redisPort struct {
	fw  *RedisFramework
	ref string
}

func (p redisPort) Ref() string {
	return p.ref
}

func (p redisPort) GetPortProfile(ctx context.Context) (types.PortProfile, error) {
	val, err := p.fw.client.Get(ctx, p.fw.portKey(p.ref)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return types.PortProfile{}, unknownRef(p.ref)
		}
		return types.PortProfile{}, redisError("failed to read port profile", err)
	}
	var profile types.PortProfile
	if err := json.Unmarshal([]byte(val), &profile); err != nil {
		return types.PortProfile{}, errbuilder.New().
			WithCode(errbuilder.CodeDataLoss).
			WithMsg("failed to decode port profile").
			WithCause(err)
	}
	return profile, nil
}

func (p redisPort) GetConnectorProfiles(ctx context.Context) ([]ports.ConnectorProfile, error) {
	ids, err := p.fw.client.LRange(ctx, p.fw.portConnectorsKey(p.ref), 0, -1).Result()
	if err != nil {
		return nil, redisError("failed to list connectors", err)
	}
	result := []ports.ConnectorProfile{}
	if len(ids) == 0 {
		return result, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, p.fw.connectorKey(id))
	}
	values, err := p.fw.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, redisError("failed to read connectors", err)
	}
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Removed between LRANGE and MGET.
			continue
		}
		var record connectorRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeDataLoss).
				WithMsg("failed to decode connector").
				WithCause(err)
		}
		result = append(result, p.fw.profileOf(record))
	}
	return result, nil
}

func (f *RedisFramework) profileOf(record connectorRecord) ports.ConnectorProfile {
	objs := make([]ports.PortService, 0, len(record.Ports))
	for _, ref := range record.Ports {
		objs = append(objs, redisPort{fw: f, ref: ref})
	}
	return ports.ConnectorProfile{
		Name:        record.Name,
		ConnectorID: record.ID,
		Ports:       objs,
		Properties:  record.Properties,
	}
}

// maxTxAttempts bounds retries of an optimistic transaction whose watched
// keys changed before EXEC.
const maxTxAttempts = 5

// watched runs fn under WATCH on keys and retries when another client
// touched them first.
func (f *RedisFramework) watched(ctx context.Context, fn func(*backend.Tx) error, keys ...string) error {
	var err error
	for range maxTxAttempts {
		err = f.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, backend.TxFailedErr) {
			return err
		}
	}
	return err
}

func (p redisPort) Connect(ctx context.Context, profile ports.ConnectorProfile) (types.ReturnCode, ports.ConnectorProfile, error) {
	record, code := newConnectorRecord(profile)
	if code != types.ReturnOK {
		return code, profile, nil
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	data, err := json.Marshal(record)
	if err != nil {
		return types.ReturnError, profile, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode connector").
			WithCause(err)
	}
	portKeys := make([]string, 0, len(record.Ports))
	for _, ref := range record.Ports {
		portKeys = append(portKeys, p.fw.portKey(ref))
	}
	connectorKey := p.fw.connectorKey(record.ID)

	err = p.fw.watched(ctx, func(tx *backend.Tx) error {
		code = types.ReturnOK
		n, err := tx.Exists(ctx, portKeys...).Result()
		if err != nil {
			return err
		}
		if int(n) != len(portKeys) {
			code = types.ReturnBadParameter
			return nil
		}
		taken, err := tx.Exists(ctx, connectorKey).Result()
		if err != nil {
			return err
		}
		if taken > 0 {
			code = types.ReturnPreconditionNotMet
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.Set(ctx, connectorKey, data, 0)
			for _, ref := range record.Ports {
				pipe.RPush(ctx, p.fw.portConnectorsKey(ref), record.ID)
			}
			return nil
		})
		return err
	}, append([]string{connectorKey}, portKeys...)...)
	if err != nil {
		return types.ReturnError, profile, redisError("failed to store connector", err)
	}
	if code != types.ReturnOK {
		return code, profile, nil
	}
	return types.ReturnOK, p.fw.profileOf(record), nil
}

func (p redisPort) Disconnect(ctx context.Context, connectorID string) (types.ReturnCode, error) {
	connectorKey := p.fw.connectorKey(connectorID)
	var code types.ReturnCode
	err := p.fw.watched(ctx, func(tx *backend.Tx) error {
		code = types.ReturnOK
		val, err := tx.Get(ctx, connectorKey).Result()
		if errors.Is(err, backend.Nil) {
			code = types.ReturnBadParameter
			return nil
		}
		if err != nil {
			return err
		}
		var record connectorRecord
		if err := json.Unmarshal([]byte(val), &record); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeDataLoss).
				WithMsg("failed to decode connector").
				WithCause(err)
		}
		if !slices.Contains(record.Ports, p.ref) {
			code = types.ReturnBadParameter
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.Del(ctx, connectorKey)
			for _, ref := range record.Ports {
				pipe.LRem(ctx, p.fw.portConnectorsKey(ref), 0, connectorID)
			}
			return nil
		})
		return err
	}, connectorKey)
	if err != nil {
		if errbuilder.CodeOf(err) == errbuilder.CodeDataLoss {
			return types.ReturnError, err
		}
		return types.ReturnError, redisError("failed to remove connector", err)
	}
	return code, nil
}
