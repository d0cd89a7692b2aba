package diagnose

import (
	"errors"
	"fmt"
	"strings"

	"kouri/internal/services"
)

// Category names a Diagnostic class.
type Category string

const (
	CategoryConnection Category = "connection"
	CategoryTimeout    Category = "timeout"
	CategoryTLS        Category = "tls"
	CategoryHTTP       Category = "http"
	CategoryCredential Category = "credential"
	CategoryGuard      Category = "guard"
	CategoryUnknown    Category = "unknown"
)

// Diagnostic is the classified, displayable form of a failure.
type Diagnostic struct {
	Category    Category
	Operation   string
	Message     string
	Remediation string
	// StatusCode is set for CategoryHTTP.
	StatusCode int
}

// String renders the diagnostic as the two-line text shown to users.
func (d Diagnostic) String() string {
	if d.Remediation == "" {
		return d.Message
	}
	return d.Message + "\n" + remediationPrefix + d.Remediation
}

const (
	remediationPrefix = "解决建议："
	httpCommonHint    = "查看API文档，确认请求参数格式和权限设置"
)

type statusEntry struct {
	Description string
	Remediation string
}

var statusTable = map[int]statusEntry{
	400: {"请求格式错误", "检查JSON格式、参数名称和数据类型"},
	401: {"身份验证失败", "1.确认API密钥 2.检查授权头格式"},
	403: {"访问被拒绝", "确认账户权限或套餐是否有效"},
	404: {"接口不存在", "检查URL地址和接口版本号"},
	429: {"请求过于频繁", "降低调用频率或升级套餐"},
	500: {"服务器内部错误", "等待5分钟后重试，若持续报错请联系服务商"},
	502: {"网关错误", "服务器端网络问题，建议等待后重试"},
	503: {"服务不可用", "服务器维护中，请关注官方状态页"},
}

// StatusDescription returns the description and remediation used for an HTTP
// status code, falling back to the generic pair for unmapped codes.
func StatusDescription(code int) (string, string) {
	if entry, ok := statusTable[code]; ok {
		return entry.Description, entry.Remediation
	}
	return fmt.Sprintf("HTTP %d错误", code), "查看对应状态码文档"
}

// Classify maps err to a Diagnostic for the named operation. It never panics
// and accepts a nil error.
func Classify(err error, operation string) Diagnostic {
	operation = strings.TrimSpace(operation)
	if operation == "" {
		operation = "服务器"
	}
	d := Diagnostic{Operation: operation}

	switch services.KindOf(err) {
	case services.KindConnection:
		d.Category = CategoryConnection
		d.Message = header(operation) + "网络连接失败"
		d.Remediation = "1.服务器是否启动 2.地址端口是否正确 3.网络是否通畅 4.防火墙设置"
	case services.KindTimeout:
		d.Category = CategoryTimeout
		d.Message = header(operation) + "请求超时"
		d.Remediation = "1.稍后重试 2.检查网络速度 3.确认服务器负载情况"
	case services.KindTLS:
		d.Category = CategoryTLS
		d.Message = header(operation) + "SSL证书验证失败"
		d.Remediation = "1.更新根证书 2.临时关闭证书验证（仅限测试环境）"
	case services.KindHTTPStatus:
		var failure *services.Failure
		errors.As(err, &failure)
		desc, fix := StatusDescription(failure.StatusCode)
		d.Category = CategoryHTTP
		d.StatusCode = failure.StatusCode
		d.Message = header(operation) + desc
		d.Remediation = fix + "；" + httpCommonHint
	case services.KindCredential:
		d.Category = CategoryCredential
		d.Message = header(operation) + "API密钥格式错误"
		d.Remediation = "请检查密钥是否完整（通常以'sk-'开头，共64字符）"
	default:
		if services.IsGuard(err) {
			d.Category = CategoryGuard
			d.Message = header(operation) + guardReason(err)
			d.Remediation = guardRemediation(err)
			return d
		}
		d.Category = CategoryUnknown
		d.Message = header(operation) + "未知错误：" + typeName(err)
		d.Remediation = "1.查看错误详情 2.联系技术支持"
	}
	return d
}

func header(operation string) string {
	return "警告：访问" + operation + "遇到问题："
}

// guardReason prefers the innermost cause, which carries the user-facing
// refusal text; a bare marker falls back to the wrapped detail.
func guardReason(err error) string {
	leaf := innermost(err)
	if leaf != nil && leaf != services.ErrValidation && leaf != services.ErrConfiguration {
		return leaf.Error()
	}
	msg := err.Error()
	for _, marker := range []error{services.ErrValidation, services.ErrConfiguration} {
		msg = strings.TrimPrefix(msg, marker.Error()+": ")
	}
	return msg
}

func guardRemediation(err error) string {
	if errors.Is(err, services.ErrConfiguration) {
		return "请先设置URL地址、API 密钥和模型名称（kouri config set）"
	}
	return "检查输入后重试"
}

// typeName reports the Go type of the innermost wrapped error, which is the
// most specific description of an unexpected failure.
func typeName(err error) string {
	if err == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", innermost(err))
}

// innermost follows the wrap chain; for joined errors it follows the last one,
// which is the cause in "%w: ...: %w" messages.
func innermost(err error) error {
	for err != nil {
		switch x := err.(type) {
		case interface{ Unwrap() error }:
			next := x.Unwrap()
			if next == nil {
				return err
			}
			err = next
		case interface{ Unwrap() []error }:
			errs := x.Unwrap()
			if len(errs) == 0 {
				return err
			}
			err = errs[len(errs)-1]
		default:
			return err
		}
	}
	return nil
}
