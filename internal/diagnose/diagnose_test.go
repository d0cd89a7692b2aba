package diagnose_test

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"testing"

	"kouri/internal/config"
	"kouri/internal/diagnose"
	"kouri/internal/services"
)

func TestClassifyStatusTable(t *testing.T) {
	want := map[int][2]string{
		400: {"请求格式错误", "检查JSON格式、参数名称和数据类型"},
		401: {"身份验证失败", "1.确认API密钥 2.检查授权头格式"},
		403: {"访问被拒绝", "确认账户权限或套餐是否有效"},
		404: {"接口不存在", "检查URL地址和接口版本号"},
		429: {"请求过于频繁", "降低调用频率或升级套餐"},
		500: {"服务器内部错误", "等待5分钟后重试，若持续报错请联系服务商"},
		502: {"网关错误", "服务器端网络问题，建议等待后重试"},
		503: {"服务不可用", "服务器维护中，请关注官方状态页"},
	}
	for code, pair := range want {
		err := fmt.Errorf("wrapped: %w", services.StatusFailure("chat", code, nil))
		d := diagnose.Classify(err, "生成人设")
		if d.Category != diagnose.CategoryHTTP || d.StatusCode != code {
			t.Fatalf("%d: unexpected diagnostic %+v", code, d)
		}
		if !strings.HasSuffix(d.Message, pair[0]) {
			t.Fatalf("%d: message %q should end with %q", code, d.Message, pair[0])
		}
		if !strings.HasPrefix(d.Remediation, pair[1]) {
			t.Fatalf("%d: remediation %q should start with %q", code, d.Remediation, pair[1])
		}
		desc, fix := diagnose.StatusDescription(code)
		if desc != pair[0] || fix != pair[1] {
			t.Fatalf("%d: StatusDescription = %q, %q", code, desc, fix)
		}
	}
}

func TestClassifyUnmappedStatus(t *testing.T) {
	for _, code := range []int{402, 418, 504, 599} {
		d := diagnose.Classify(services.StatusFailure("chat", code, nil), "图片生成")
		if d.Category != diagnose.CategoryHTTP {
			t.Fatalf("%d: unexpected category %s", code, d.Category)
		}
		if !strings.Contains(d.Message, fmt.Sprintf("HTTP %d错误", code)) {
			t.Fatalf("%d: unexpected message %q", code, d.Message)
		}
		if !strings.HasPrefix(d.Remediation, "查看对应状态码文档") {
			t.Fatalf("%d: unexpected remediation %q", code, d.Remediation)
		}
	}
}

func TestClassifyRateLimitScenario(t *testing.T) {
	d := diagnose.Classify(services.StatusFailure("polish profile", 429, []byte(`{"error":"slow down"}`)), "润色人设")
	if d.Category != diagnose.CategoryHTTP {
		t.Fatalf("expected http category, got %s", d.Category)
	}
	if !strings.Contains(d.Message, "请求过于频繁") || !strings.Contains(d.Message, "润色人设") {
		t.Fatalf("unexpected message %q", d.Message)
	}
	if !strings.Contains(d.String(), "降低调用频率") {
		t.Fatalf("expected remediation in rendered text, got %q", d.String())
	}
}

func TestClassifyTransportKinds(t *testing.T) {
	refused := &url.Error{Op: "Post", URL: "http://127.0.0.1:1", Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}
	tests := []struct {
		name string
		err  error
		want diagnose.Category
		hint string
	}{
		{"connection", services.TransportFailure("chat", refused), diagnose.CategoryConnection, "防火墙"},
		{"timeout", services.TransportFailure("chat", context.DeadlineExceeded), diagnose.CategoryTimeout, "稍后重试"},
		{"tls", services.TransportFailure("chat", x509.UnknownAuthorityError{}), diagnose.CategoryTLS, "根证书"},
		{"credential", services.CredentialFailure("check api key", errors.New("bad")), diagnose.CategoryCredential, "sk-"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := diagnose.Classify(tc.err, "实际 AI 对话服务器")
			if d.Category != tc.want {
				t.Fatalf("category = %s, want %s", d.Category, tc.want)
			}
			if !strings.Contains(d.Message, "实际 AI 对话服务器") {
				t.Fatalf("message must name the operation: %q", d.Message)
			}
			if !strings.Contains(d.Remediation, tc.hint) {
				t.Fatalf("remediation %q should mention %q", d.Remediation, tc.hint)
			}
		})
	}
}

type oddError struct{}

func (oddError) Error() string { return "odd" }

func TestClassifyUnknownNamesType(t *testing.T) {
	d := diagnose.Classify(fmt.Errorf("outer: %w", oddError{}), "图片识别")
	if d.Category != diagnose.CategoryUnknown {
		t.Fatalf("unexpected category %s", d.Category)
	}
	if !strings.Contains(d.Message, "diagnose_test.oddError") {
		t.Fatalf("expected type name in %q", d.Message)
	}
	if d.Remediation == "" {
		t.Fatal("expected remediation")
	}
}

func TestClassifyIsTotal(t *testing.T) {
	d := diagnose.Classify(nil, "")
	if d.Category != diagnose.CategoryUnknown || !strings.Contains(d.Message, "<nil>") {
		t.Fatalf("unexpected diagnostic for nil: %+v", d)
	}
	if d.Operation == "" {
		t.Fatal("expected fallback operation label")
	}
	// A Failure with an unknown kind still classifies.
	d = diagnose.Classify(&services.Failure{Kind: services.FailureKind(99)}, "x")
	if d.Category != diagnose.CategoryUnknown {
		t.Fatalf("unexpected category %s", d.Category)
	}
}

func TestClassifyGuards(t *testing.T) {
	incomplete := config.Config{}.Complete()
	d := diagnose.Classify(incomplete, "生成人设")
	if d.Category != diagnose.CategoryGuard {
		t.Fatalf("unexpected category %s", d.Category)
	}
	if !strings.Contains(d.Message, config.ErrIncomplete.Error()) {
		t.Fatalf("expected incomplete reason in %q", d.Message)
	}
	if !strings.Contains(d.Remediation, "config set") {
		t.Fatalf("unexpected remediation %q", d.Remediation)
	}

	bare := services.Wrap(services.ErrValidation, "profile", "polish", "instruction required", nil)
	d = diagnose.Classify(bare, "润色人设")
	if d.Category != diagnose.CategoryGuard || !strings.HasSuffix(d.Message, "profile: polish: instruction required") {
		t.Fatalf("unexpected guard diagnostic %+v", d)
	}
}
