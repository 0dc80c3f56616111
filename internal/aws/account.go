package aws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/wardenhq/warden/internal/domain"
)

// DefaultRoleARNPattern is the cross-account role assumed in each target
// account. The single %s is replaced by the account ID.
const DefaultRoleARNPattern = "arn:aws:iam::%s:role/WardenGroupManagerRole"

type credentialSet struct {
	accessKeyID     string
	secretAccessKey string
	sessionToken    string
	expiration      time.Time
}

// AccountContext hands out per-account, per-region Clients. Credentials
// for foreign accounts come from STS AssumeRole and are cached until
// shortly before they expire; an empty scope account means the base
// credentials are used as-is.
type AccountContext struct {
	baseConfig      aws.Config
	roleARNPattern  string
	stsClient       *sts.Client
	credentialCache map[string]credentialSet
	clientPool      map[string]*Client
	mu              sync.RWMutex
}

func NewAccountContext(cfg aws.Config, roleARNPattern string) *AccountContext {
	if roleARNPattern == "" {
		roleARNPattern = DefaultRoleARNPattern
	}
	return &AccountContext{
		baseConfig:      cfg,
		roleARNPattern:  roleARNPattern,
		stsClient:       sts.NewFromConfig(cfg),
		credentialCache: make(map[string]credentialSet),
		clientPool:      make(map[string]*Client),
	}
}

func (a *AccountContext) assumeRole(ctx context.Context, accountID string) (credentialSet, error) {
	a.mu.RLock()
	entry, exists := a.credentialCache[accountID]
	a.mu.RUnlock()

	if exists && time.Now().Add(5*time.Minute).Before(entry.expiration) {
		return entry, nil
	}

	roleARN := fmt.Sprintf(a.roleARNPattern, accountID)
	sessionName := fmt.Sprintf("warden-%s", accountID)

	out, err := a.stsClient.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(sessionName),
		DurationSeconds: aws.Int32(3600),
	})
	if err != nil {
		return credentialSet{}, fmt.Errorf("assume role %s: %w", roleARN, err)
	}

	creds := credentialSet{
		accessKeyID:     derefString(out.Credentials.AccessKeyId),
		secretAccessKey: derefString(out.Credentials.SecretAccessKey),
		sessionToken:    derefString(out.Credentials.SessionToken),
		expiration:      *out.Credentials.Expiration,
	}

	a.mu.Lock()
	a.credentialCache[accountID] = creds
	a.mu.Unlock()

	return creds, nil
}

// ClientFor resolves the pooled Client for a scope, assuming the
// cross-account role when the scope names a foreign account.
func (a *AccountContext) ClientFor(ctx context.Context, scope domain.Scope) (*Client, error) {
	region := scope.Region
	if region == "" {
		region = a.baseConfig.Region
	}
	key := scope.Account + "/" + region

	a.mu.RLock()
	client, exists := a.clientPool[key]
	a.mu.RUnlock()

	if exists {
		if scope.Account == "" {
			return client, nil
		}
		a.mu.RLock()
		entry, hasEntry := a.credentialCache[scope.Account]
		a.mu.RUnlock()
		if hasEntry && time.Now().Add(5*time.Minute).Before(entry.expiration) {
			return client, nil
		}
	}

	cfg := a.baseConfig.Copy()
	cfg.Region = region

	if scope.Account != "" {
		creds, err := a.assumeRole(ctx, scope.Account)
		if err != nil {
			return nil, err
		}
		cfg.Credentials = credentials.NewStaticCredentialsProvider(
			creds.accessKeyID,
			creds.secretAccessKey,
			creds.sessionToken,
		)
	}

	client = NewClient(cfg, scope.Account, region)

	a.mu.Lock()
	a.clientPool[key] = client
	a.mu.Unlock()

	return client, nil
}
