// internal/service/audit/interfaces/invoke_handler.go
package interfaces

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"ecommerce/internal/pkg/eventbus"
	"ecommerce/internal/pkg/requestinfo"
	"ecommerce/internal/service/audit/application"
	"ecommerce/internal/service/audit/domain"
)

// InvokeHandler 按函数名同步接收事件，供 invoke 传输调用
type InvokeHandler struct {
	appSvc    *application.AuditService
	functions map[string]bool
}

func NewInvokeHandler(appSvc *application.AuditService, functions ...string) *InvokeHandler {
	known := make(map[string]bool, len(functions))
	for _, f := range functions {
		known[f] = true
	}
	return &InvokeHandler{appSvc: appSvc, functions: known}
}

func (h *InvokeHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/functions/:name/invocations", h.invoke)
}

func (h *InvokeHandler) invoke(c *gin.Context) {
	name := c.Param("name")
	if !h.functions[name] {
		c.JSON(http.StatusNotFound, gin.H{"message": "Function not found: " + name})
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}
	env, err := eventbus.DecodeEnvelope(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body", "error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.appSvc.HandleEnvelope(ctx, env, requestinfo.FromContext(ctx).InvocationID); err != nil {
		if errors.Is(err, domain.ErrUnknownEventKind) {
			c.JSON(http.StatusBadRequest, gin.H{"eventRecorded": false, "message": err.Error()})
			return
		}
		_ = c.Error(err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"eventRecorded": true, "message": "OK"})
}
