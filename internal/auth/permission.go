package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openfga/go-sdk/client"
	"github.com/openfga/go-sdk/credentials"
)

// Authorizer 基于 OpenFGA 的细粒度授权
// 检查结果短期缓存,降低验证接口的额外延迟
type Authorizer struct {
	client  *client.OpenFgaClient
	storeID string
	modelID string
	cache   *PermissionCache
}

// NewAuthorizer 创建授权客户端
func NewAuthorizer(apiURL, storeID, modelID string) (*Authorizer, error) {
	configuration := client.ClientConfiguration{
		ApiUrl:  apiURL,
		StoreId: storeID,
		Credentials: &credentials.Credentials{
			Method: credentials.CredentialsMethodNone,
		},
	}

	fgaClient, err := client.NewSdkClient(&configuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenFGA client: %w", err)
	}

	return &Authorizer{
		client:  fgaClient,
		storeID: storeID,
		modelID: modelID,
		cache:   NewPermissionCache(30 * time.Second),
	}, nil
}

// CheckPermission 检查 user 对 object 是否持有 relation
func (a *Authorizer) CheckPermission(ctx context.Context, userID, relation, objectType, objectID string) (bool, error) {
	cacheKey := fmt.Sprintf("%s|%s|%s:%s", userID, relation, objectType, objectID)
	if allowed, ok := a.cache.Get(cacheKey); ok {
		return allowed, nil
	}

	body := client.ClientCheckRequest{
		User:     fmt.Sprintf("user:%s", userID),
		Relation: relation,
		Object:   fmt.Sprintf("%s:%s", objectType, objectID),
	}

	response, err := a.client.Check(ctx).Body(body).Execute()
	if err != nil {
		return false, fmt.Errorf("failed to check permission: %w", err)
	}

	allowed := response.GetAllowed()
	a.cache.Set(cacheKey, allowed)
	return allowed, nil
}

// GrantVerifier 将主管登记为某员工日报的验证人
func (a *Authorizer) GrantVerifier(ctx context.Context, managerID, employeeID string) error {
	body := client.ClientWriteRequest{
		Writes: []client.ClientTupleKey{
			{
				User:     fmt.Sprintf("user:%s", managerID),
				Relation: "verifier",
				Object:   fmt.Sprintf("employee:%s", employeeID),
			},
		},
	}

	if _, err := a.client.Write(ctx).Body(body).Execute(); err != nil {
		return fmt.Errorf("failed to grant verifier: %w", err)
	}
	a.cache.Clear()
	return nil
}

// RevokeVerifier 撤销验证人关系
func (a *Authorizer) RevokeVerifier(ctx context.Context, managerID, employeeID string) error {
	body := client.ClientWriteRequest{
		Deletes: []client.ClientTupleKeyWithoutCondition{
			{
				User:     fmt.Sprintf("user:%s", managerID),
				Relation: "verifier",
				Object:   fmt.Sprintf("employee:%s", employeeID),
			},
		},
	}

	if _, err := a.client.Write(ctx).Body(body).Execute(); err != nil {
		return fmt.Errorf("failed to revoke verifier: %w", err)
	}
	a.cache.Clear()
	return nil
}

// PermissionModel 日报场景的 OpenFGA 权限模型定义
func PermissionModel() string {
	return `model
  schema 1.1

type user

type employee
  relations
    define self: [user]
    define verifier: [user]
    define viewer: [user] or self or verifier`
}

// VerifierMiddleware 验证人权限中间件
// authorizer 为 nil 时退化为 RequireRole(manager) 已经给出的保护
func VerifierMiddleware(authorizer *Authorizer, employeeIDParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authorizer == nil {
			c.Next()
			return
		}

		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "unauthorized",
			})
			c.Abort()
			return
		}

		employeeID := c.Param(employeeIDParam)
		if employeeID == "" {
			employeeID = c.Query(employeeIDParam)
		}

		allowed, err := authorizer.CheckPermission(
			c.Request.Context(),
			userID.(string),
			"verifier",
			"employee",
			employeeID,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    500,
				"message": "permission check failed",
				"detail":  err.Error(),
			})
			c.Abort()
			return
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "forbidden",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
