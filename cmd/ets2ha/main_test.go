package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/nerrad567/ets2ha/internal/commissioning/generate"
	"github.com/nerrad567/ets2ha/internal/infrastructure/config"
	"github.com/nerrad567/ets2ha/internal/infrastructure/logging"
	"github.com/nerrad567/ets2ha/internal/infrastructure/mqtt"
)

const testProjectXML = `<?xml version="1.0" encoding="utf-8"?>
<KNX xmlns="http://knx.org/xml/project/20">
  <Project Id="P-0341">
    <ProjectInformation Name="Maison" GroupAddressStyle="ThreeLevel" />
  </Project>
</KNX>`

const testInstallationXML = `<?xml version="1.0" encoding="utf-8"?>
<KNX xmlns="http://knx.org/xml/project/20">
  <Project Id="P-0341">
    <Installations>
      <Installation Name="">
        <GroupAddresses>
          <GroupRanges>
            <GroupRange Id="P-0341-0_GR-1" RangeStart="2048" RangeEnd="4095" Name="Lighting">
              <GroupAddress Id="P-0341-0_GA-1" Address="2305" Name="Living light" DatapointType="DPST-1-1" />
              <GroupAddress Id="P-0341-0_GA-2" Address="2306" Name="Living dim" DatapointType="DPST-5-1" />
            </GroupRange>
          </GroupRanges>
        </GroupAddresses>
        <Locations>
          <Space Id="P-0341-0_BP-1" Type="Building" Name="House">
            <Space Id="P-0341-0_BP-2" Type="Floor" Name="Ground floor">
              <Space Id="P-0341-0_BP-3" Type="Room" Name="Living room">
                <Function Id="P-0341-0_F-1" Name="Ceiling" Type="FT-2">
                  <GroupAddressRef Id="P-0341-0_F-1_GF-1" RefId="P-0341-0_GA-1" />
                  <GroupAddressRef Id="P-0341-0_F-1_GF-2" RefId="P-0341-0_GA-2" />
                </Function>
              </Space>
            </Space>
          </Space>
        </Locations>
      </Installation>
    </Installations>
  </Project>
</KNX>`

const testRules = `
group_addresses:
  - when: ga.datapoint == "1.001"
    set:
      linknx_disp_name: Living ceiling
`

// clearEnv unsets every variable config.Load reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		config.EnvLogLevel, config.EnvAddressStyle, config.EnvRulesFile,
		config.EnvMQTTHost, config.EnvMQTTUsername, config.EnvMQTTPassword,
		config.EnvLegacyDebug, config.EnvLegacyStyle,
	} {
		t.Setenv(name, "")
	}
}

// writeProject creates a .knxproj archive in a temp dir and returns its path.
func writeProject(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"P-0341/project.xml": testProjectXML,
		"P-0341/0.xml":       testInstallationXML,
	} {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create zip entry: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write zip content: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}

	path := filepath.Join(t.TempDir(), "house.knxproj")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("Failed to write project: %v", err)
	}
	return path
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// runCLI executes run and returns what it wrote to stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	clearEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var stdout, stderr bytes.Buffer
	err := run(ctx, args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun_Formats(t *testing.T) {
	stdout, _, err := runCLI(t, "formats")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if stdout != "homeass\nlinknx\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRun_Version(t *testing.T) {
	stdout, _, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.HasPrefix(stdout, "ets2ha "+version) {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRun_GenerateHomeAssistant(t *testing.T) {
	project := writeProject(t)

	stdout, stderr, err := runCLI(t, "generate", project)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	for _, want := range []string{"knx:", "light:", "name: Ceiling", "address: 1/1/1", "brightness_address: 1/1/2"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "conversion complete") {
		t.Error("log output leaked into stdout")
	}
	if !strings.Contains(stderr, "conversion complete") {
		t.Errorf("stderr missing completion log:\n%s", stderr)
	}
	if !strings.Contains(stderr, "run_id=") {
		t.Errorf("stderr missing run_id:\n%s", stderr)
	}
}

func TestRun_GenerateLinknx(t *testing.T) {
	project := writeProject(t)
	rules := writeFile(t, "rules.yaml", testRules)

	stdout, _, err := runCLI(t, "generate", "-f", "linknx", "--rules", rules, project)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	want := `        <object type="1.001" id="id_1_1_1" gad="1/1/1" init="request">Living ceiling</object>` + "\n" +
		`        <object type="5.001" id="id_1_1_2" gad="1/1/2" init="request">Living dim</object>` + "\n"
	if stdout != want {
		t.Errorf("stdout =\n%s\nwant\n%s", stdout, want)
	}
}

func TestRun_GenerateAddressStyle(t *testing.T) {
	project := writeProject(t)

	tests := []struct {
		style string
		want  string
	}{
		{"TwoLevel", "address: 1/257"},
		{"Free", "address: \"2305\""},
		{"ThreeLevel", "address: 1/1/1"},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			stdout, _, err := runCLI(t, "generate", "--address-style", tt.style, project)
			if err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if !strings.Contains(stdout, tt.want) {
				t.Errorf("stdout missing %q:\n%s", tt.want, stdout)
			}
		})
	}
}

func TestRun_GenerateStyleFromEnvironment(t *testing.T) {
	project := writeProject(t)

	clearEnv(t)
	t.Setenv(config.EnvLegacyStyle, "TwoLevel")

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"generate", project}, &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "address: 1/257") {
		t.Errorf("stdout =\n%s", stdout.String())
	}
}

func TestRun_GenerateToFile(t *testing.T) {
	project := writeProject(t)
	dir := t.TempDir()

	t.Run("plain", func(t *testing.T) {
		out := filepath.Join(dir, "knx.yaml")
		stdout, _, err := runCLI(t, "generate", "-o", out, project)
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}
		if stdout != "" {
			t.Errorf("stdout = %q, want empty", stdout)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if !strings.Contains(string(data), "light:") {
			t.Errorf("output =\n%s", data)
		}
	})

	t.Run("xz", func(t *testing.T) {
		out := filepath.Join(dir, "knx.yaml.xz")
		if _, _, err := runCLI(t, "generate", "-o", out, project); err != nil {
			t.Fatalf("run() error = %v", err)
		}
		f, err := os.Open(out)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer f.Close()

		r, err := xz.NewReader(f)
		if err != nil {
			t.Fatalf("xz.NewReader() error = %v", err)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if !strings.Contains(string(data), "brightness_address: 1/1/2") {
			t.Errorf("decompressed output =\n%s", data)
		}
	})
}

func TestRun_GenerateDigest(t *testing.T) {
	project := writeProject(t)
	out := filepath.Join(t.TempDir(), "knx.yaml")

	_, stderr, err := runCLI(t, "generate", "--digest", "-o", out, project)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if want := "blake3=" + digest(data); !strings.Contains(stderr, want) {
		t.Errorf("stderr missing %q:\n%s", want, stderr)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	project := writeProject(t)
	cfg := writeFile(t, "config.yaml", `
logging:
  level: error
  format: json
conversion:
  format: linknx
`)

	stdout, stderr, err := runCLI(t, "--config", cfg, "generate", project)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(stdout, `gad="1/1/1"`) {
		t.Errorf("stdout =\n%s", stdout)
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want nothing at error level", stderr)
	}
}

func TestRun_Errors(t *testing.T) {
	project := writeProject(t)
	notProject := writeFile(t, "house.zip", "not a project")

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown format",
			args:    []string{"generate", "-f", "openhab", project},
			wantErr: generate.ErrUnknownFormat,
		},
		{
			name:    "invalid address style",
			args:    []string{"generate", "--address-style", "FourLevel", project},
			wantMsg: "conversion.address_style",
		},
		{
			name:    "missing project",
			args:    []string{"generate", filepath.Join(t.TempDir(), "missing.knxproj")},
			wantMsg: "",
		},
		{
			name:    "wrong extension",
			args:    []string{"generate", notProject},
			wantMsg: "reading project",
		},
		{
			name:    "invalid log level",
			args:    []string{"--log-level", "loud", "generate", project},
			wantMsg: "logging.level",
		},
		{
			name:    "no command",
			args:    []string{},
			wantMsg: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("run() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("run() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("run() error = %v, want it to mention %q", err, tt.wantMsg)
			}
			if strings.Contains(stdout, "knx:") {
				t.Errorf("artifact written despite error:\n%s", stdout)
			}
		})
	}
}

func TestRun_Inspect(t *testing.T) {
	project := writeProject(t)
	rules := writeFile(t, "rules.yaml", testRules)

	stdout, _, err := runCLI(t, "inspect", "--rules", rules, project)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	for _, want := range []string{
		"project: Maison",
		"address_style: ThreeLevel",
		"id: P-0341-0_GA-1",
		"datapoint: \"1.001\"",
		"linknx_disp_name: Living ceiling",
		"type: dimmable_light",
		"room: Living room",
		"floor: Ground floor",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

type fakePublisher struct {
	messages map[string][]byte
	qos      []byte
	closed   bool
	failOn   string
}

func (p *fakePublisher) PublishRetained(topic string, payload []byte, qos byte) error {
	if p.failOn != "" && strings.HasPrefix(topic, p.failOn) {
		return mqtt.ErrPublishFailed
	}
	p.messages[topic] = payload
	p.qos = append(p.qos, qos)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

// stubBroker replaces connectBroker for the duration of the test.
func stubBroker(t *testing.T, pub *fakePublisher, dialErr error) *mqtt.Topics {
	t.Helper()
	var used mqtt.Topics
	orig := connectBroker
	connectBroker = func(_ context.Context, _ config.MQTTConfig, topics mqtt.Topics, _ *logging.Logger) (publisher, error) {
		used = topics
		if dialErr != nil {
			return nil, dialErr
		}
		return pub, nil
	}
	t.Cleanup(func() { connectBroker = orig })
	return &used
}

func TestRun_GeneratePublish(t *testing.T) {
	project := writeProject(t)
	pub := &fakePublisher{messages: make(map[string][]byte)}
	topics := stubBroker(t, pub, nil)

	stdout, _, err := runCLI(t, "generate", "--publish", project)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if topics.Root != "ets2ha" {
		t.Errorf("topic root = %q", topics.Root)
	}
	if !pub.closed {
		t.Error("publisher not closed")
	}

	artifact, ok := pub.messages["ets2ha/config/homeass"]
	if !ok {
		t.Fatalf("no artifact message, got topics %v", pub.messages)
	}
	if string(artifact) != stdout {
		t.Errorf("published artifact differs from stdout:\n%s", artifact)
	}

	var summary runSummary
	for topic, payload := range pub.messages {
		if strings.HasPrefix(topic, "ets2ha/run/") {
			if err := json.Unmarshal(payload, &summary); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if topic != "ets2ha/run/"+summary.RunID {
				t.Errorf("summary topic = %q, run_id = %q", topic, summary.RunID)
			}
		}
	}
	if summary.Project != "Maison" || summary.Format != generate.FormatHomeAssistant {
		t.Errorf("summary = %+v", summary)
	}
	if summary.GroupAddresses != 2 || summary.Objects != 1 || summary.Emitted != 1 {
		t.Errorf("summary counters = %+v", summary)
	}
	if summary.BLAKE3 != digest(artifact) {
		t.Errorf("summary blake3 = %q, want %q", summary.BLAKE3, digest(artifact))
	}
	for _, q := range pub.qos {
		if q != 1 {
			t.Errorf("qos = %d, want 1", q)
		}
	}
}

func TestRun_GeneratePublishErrors(t *testing.T) {
	project := writeProject(t)

	t.Run("connect", func(t *testing.T) {
		stubBroker(t, nil, mqtt.ErrConnectionFailed)
		_, _, err := runCLI(t, "generate", "--publish", project)
		if !errors.Is(err, mqtt.ErrConnectionFailed) {
			t.Errorf("run() error = %v, want ErrConnectionFailed", err)
		}
	})

	t.Run("publish", func(t *testing.T) {
		pub := &fakePublisher{messages: make(map[string][]byte), failOn: "ets2ha/run/"}
		stubBroker(t, pub, nil)
		_, _, err := runCLI(t, "generate", "--publish", project)
		if !errors.Is(err, mqtt.ErrPublishFailed) {
			t.Errorf("run() error = %v, want ErrPublishFailed", err)
		}
		if !pub.closed {
			t.Error("publisher not closed after failure")
		}
	})
}

func TestDigest(t *testing.T) {
	// BLAKE3 of the empty input.
	const want = "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"
	if got := digest(nil); got != want {
		t.Errorf("digest(nil) = %s, want %s", got, want)
	}
}
