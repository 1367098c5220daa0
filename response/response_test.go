package response

import (
	"encoding/json"
	"testing"
)

func TestEnvelope_DecodesSuccess(t *testing.T) {
	b, err := json.Marshal(Success(map[string]int{"count": 3}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Code != CodeSuccess || env.Msg != "success" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	var data struct{ Count int }
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Count != 3 {
		t.Fatalf("unexpected data %s err=%v", env.Data, err)
	}
}

func TestError_OmitsData(t *testing.T) {
	b, _ := json.Marshal(Error(CodeParamError, "bad"))
	if string(b) != `{"code":10001,"msg":"bad"}` {
		t.Fatalf("unexpected json %s", b)
	}
}
