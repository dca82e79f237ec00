package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/jsonsage/pipeline"
	"github.com/BaSui01/jsonsage/schema"
	"github.com/BaSui01/jsonsage/types"
)

// =============================================================================
// 🧩 Schema Handler
// =============================================================================

// SchemaService 是 handler 依赖的管道能力，*pipeline.Facade 实现了它
type SchemaService interface {
	GenerateSchema(ctx context.Context, description string, opts pipeline.GenerateOptions) (*schema.Schema, error)
	ConvertJSONToSchema(ctx context.Context, jsonText string, opts pipeline.ConvertOptions) (*schema.Schema, error)
	ValidateJSON(dataText string, s *schema.Schema) (schema.Result, error)
	ValidateSchema(text string) schema.Result
}

// SchemaHandler 处理 schema 生成、转换与校验请求
type SchemaHandler struct {
	service SchemaService
	logger  *zap.Logger
}

// NewSchemaHandler 创建 SchemaHandler
func NewSchemaHandler(service SchemaService, logger *zap.Logger) *SchemaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchemaHandler{
		service: service,
		logger:  logger.With(zap.String("handler", "schema")),
	}
}

// GenerateRequest POST /api/v1/schemas/generate
type GenerateRequest struct {
	Description          string `json:"description"`
	Title                string `json:"title,omitempty"`
	SchemaDescription    string `json:"schema_description,omitempty"`
	Required             bool   `json:"required,omitempty"`
	AdditionalProperties *bool  `json:"additional_properties,omitempty"`
}

// ConvertRequest POST /api/v1/schemas/convert。
// JSON 可以是 JSON 值本身，也可以是包含 JSON 文本的字符串。
type ConvertRequest struct {
	JSON            json.RawMessage `json:"json"`
	IncludeExamples bool            `json:"include_examples,omitempty"`
	Enhance         bool            `json:"enhance,omitempty"`
	Description     string          `json:"description,omitempty"`
}

// CheckRequest POST /api/v1/schemas/check
type CheckRequest struct {
	Schema json.RawMessage `json:"schema"`
}

// ValidateRequest POST /api/v1/validate
type ValidateRequest struct {
	Data   json.RawMessage `json:"data"`
	Schema json.RawMessage `json:"schema"`
}

// HandleGenerate 根据自然语言描述生成 schema
func (h *SchemaHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		WriteError(w, r, types.NewInputError("description is required"), h.logger)
		return
	}

	s, err := h.service.GenerateSchema(r.Context(), req.Description, pipeline.GenerateOptions{
		Title:                req.Title,
		Description:          req.SchemaDescription,
		RequireAll:           req.Required,
		AdditionalProperties: req.AdditionalProperties,
	})
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	WriteSuccess(w, r, s)
}

// HandleConvert 从示例 JSON 推断 schema，可选增强
func (h *SchemaHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.JSON) == 0 {
		WriteError(w, r, types.NewInputError("json is required"), h.logger)
		return
	}

	s, err := h.service.ConvertJSONToSchema(r.Context(), rawText(req.JSON), pipeline.ConvertOptions{
		IncludeExamples: req.IncludeExamples,
		Enhance:         req.Enhance,
		Description:     req.Description,
	})
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	WriteSuccess(w, r, s)
}

// HandleCheck 对 schema 运行元校验；校验失败也返回 200，结果在 data 中
func (h *SchemaHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.Schema) == 0 {
		WriteError(w, r, types.NewInputError("schema is required"), h.logger)
		return
	}
	WriteSuccess(w, r, h.service.ValidateSchema(rawText(req.Schema)))
}

// HandleValidate 校验数据是否符合 schema
func (h *SchemaHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.Data) == 0 || len(req.Schema) == 0 {
		WriteError(w, r, types.NewInputError("data and schema are required"), h.logger)
		return
	}

	s, err := schema.Parse([]byte(rawText(req.Schema)))
	if err != nil {
		WriteError(w, r, types.NewInvalidJSONError(err), h.logger)
		return
	}
	if err := s.Check(); err != nil {
		WriteError(w, r, types.NewInputError("invalid schema: "+err.Error()), h.logger)
		return
	}

	res, err := h.service.ValidateJSON(rawText(req.Data), s)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}
	WriteSuccess(w, r, res)
}

func (h *SchemaHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !ValidateContentType(w, r, h.logger) {
		return false
	}
	return DecodeJSONBody(w, r, dst, h.logger) == nil
}

// Register 在 mux 上注册 schema 路由
func (h *SchemaHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/schemas/generate", h.HandleGenerate)
	mux.HandleFunc("POST /api/v1/schemas/convert", h.HandleConvert)
	mux.HandleFunc("POST /api/v1/schemas/check", h.HandleCheck)
	mux.HandleFunc("POST /api/v1/validate", h.HandleValidate)
}
