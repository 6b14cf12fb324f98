package catalog

import (
	"github.com/animus-labs/evergreen-matrix/internal/domain"
	"github.com/animus-labs/evergreen-matrix/internal/execution/derive"
)

const (
	asanCFlags  = "-fsanitize=address -fno-omit-frame-pointer -DBSON_MEMCHECK"
	ubsanCFlags = "-fsanitize=undefined -fno-omit-frame-pointer -DBSON_MEMCHECK"
	llvmPath    = "/usr/lib/llvm-3.8/bin:$PATH"
	noAlignment = "-DENABLE_EXTRA_ALIGNMENT=OFF"

	scanBuildCheck = "if find scan -name \\*.html | grep -q html; then\n  exit 123\nfi"
)

// sslBuildOptions maps SSL axis values to compile.sh SSL settings.
var sslBuildOptions = map[domain.Value]string{
	domain.SSLOpenSSL: "OPENSSL",
	domain.SSLDarwin:  "DARWIN",
	domain.SSLWindows: "WINDOWS",
	domain.Absent:     "OFF",
}

var saslBuildOptions = map[domain.Value]string{
	domain.SASLCyrus: "AUTO",
	domain.SASLSSPI:  "SSPI",
	domain.Absent:    "OFF",
}

// Default returns the compile catalog the integration and auth families
// depend on.
func Default() (Catalog, error) {
	tasks := []domain.CompileTask{
		compile("debug-compile-compression-zlib", []string{"zlib", "compression"}, domain.CompressionZlib, nil),
		compile("debug-compile-compression-snappy", []string{"snappy", "compression"}, domain.CompressionSnappy, nil),
		compile("debug-compile-compression", []string{"zlib", "snappy", "compression"}, domain.CompressionAll, nil),
		compile("debug-compile-no-align", []string{"debug-compile"}, domain.CompressionZlib, map[string]string{
			"EXTRA_CONFIGURE_FLAGS": noAlignment,
		}),
		compile("debug-compile-lto", nil, domain.CompressionDefault, map[string]string{"CFLAGS": "-flto"}),
		compile("debug-compile-lto-thin", nil, domain.CompressionDefault, map[string]string{"CFLAGS": "-flto=thin"}),
		special("debug-compile-c11", []string{"debug-compile", "c11", "stdflags"}, domain.CompressionDefault, map[string]string{
			"CFLAGS": "-std=c11 -D_XOPEN_SOURCE=600",
		}),
		special("debug-compile-c99", []string{"debug-compile", "c99", "stdflags"}, domain.CompressionDefault, map[string]string{
			"CFLAGS": "-std=c99 -D_XOPEN_SOURCE=600",
		}),
		special("debug-compile-c89", []string{"debug-compile", "c89", "stdflags"}, domain.CompressionDefault, map[string]string{
			"CFLAGS": "-std=c89 -D_POSIX_C_SOURCE=200112L -pedantic",
		}),
		special(derive.ValgrindCompileTask, []string{"debug-compile", "valgrind"}, domain.CompressionDefault, map[string]string{
			"SASL":     "OFF",
			"SSL":      "OPENSSL",
			"VALGRIND": "ON",
			"CFLAGS":   "-DBSON_MEMCHECK",
		}),
		withExtra(special("debug-compile-coverage", []string{"debug-compile", "coverage"}, domain.CompressionDefault, map[string]string{
			"COVERAGE": "ON",
		}), domain.FuncCall("upload coverage")),
		compile("debug-compile-no-counters", []string{"debug-compile", "no-counters"}, domain.CompressionDefault, map[string]string{
			"ENABLE_SHM_COUNTERS": "OFF",
		}),
		special(derive.ASanCompileTask, []string{"debug-compile", "asan-clang"}, domain.CompressionZlib, clangSanitizer(asanCFlags, nil)),
		special("debug-compile-asan-gcc", nil, domain.CompressionZlib, map[string]string{
			"CFLAGS":                "-fsanitize=address -pthread",
			"CHECK_LOG":             "ON",
			"EXTRA_CONFIGURE_FLAGS": noAlignment,
		}),
		special(derive.ASanCompileTask+"-"+string(domain.SSLOpenSSL), []string{"debug-compile", "asan-clang"}, domain.CompressionZlib,
			clangSanitizer(asanCFlags, map[string]string{"SSL": "OPENSSL"})),
		special("debug-compile-ubsan", nil, domain.CompressionZlib, clangSanitizer(ubsanCFlags, nil)),
		scanBuild(),
	}
	tasks = append(tasks, tlsBuilds()...)
	return New(tasks...)
}

// tlsBuilds are the plain debug builds keyed by SASL and SSL backend that
// integration and auth tasks fetch.
func tlsBuilds() []domain.CompileTask {
	combos := []struct {
		sasl domain.Value
		ssl  domain.Value
	}{
		{domain.Absent, domain.Absent},
		{domain.Absent, domain.SSLOpenSSL},
		{domain.Absent, domain.SSLDarwin},
		{domain.Absent, domain.SSLWindows},
		{domain.SASLCyrus, domain.SSLOpenSSL},
		{domain.SASLCyrus, domain.SSLDarwin},
		{domain.SASLCyrus, domain.SSLWindows},
		{domain.SASLSSPI, domain.SSLWindows},
	}
	out := make([]domain.CompileTask, 0, len(combos))
	for _, c := range combos {
		out = append(out, compile(
			derive.CompileTaskName(c.sasl, c.ssl),
			[]string{"debug-compile", domain.Display(domain.AxisSASL, c.sasl), domain.Display(domain.AxisSSL, c.ssl)},
			domain.CompressionDefault,
			map[string]string{
				"SASL": saslBuildOptions[c.sasl],
				"SSL":  sslBuildOptions[c.ssl],
			},
		))
	}
	return out
}

func scanBuild() domain.CompileTask {
	task := special("debug-compile-scan-build", []string{"clang", "debug-compile", "scan-build"}, domain.CompressionDefault, map[string]string{
		"ANALYZE": "ON",
		"CC":      "clang",
	})
	task.ContinueOnErr = true
	return withExtra(task,
		domain.FuncCall("upload scan artifacts"),
		domain.Command{
			Command: "shell.exec",
			Type:    "test",
			Params:  &domain.ShellParams{WorkingDir: "mongoc", Script: scanBuildCheck},
		},
	)
}

func clangSanitizer(cflags string, extra map[string]string) map[string]string {
	opts := map[string]string{
		"CC":                    "clang-3.8",
		"CFLAGS":                cflags,
		"CHECK_LOG":             "ON",
		"EXTRA_CONFIGURE_FLAGS": noAlignment,
		"PATH":                  llvmPath,
	}
	for k, v := range extra {
		opts[k] = v
	}
	return opts
}

func compile(name string, tags []string, compression domain.Compression, opts map[string]string) domain.CompileTask {
	return domain.CompileTask{
		Name:        name,
		Tags:        tags,
		Config:      domain.BuildDebug,
		Compression: compression,
		Options:     opts,
	}
}

func special(name string, tags []string, compression domain.Compression, opts map[string]string) domain.CompileTask {
	task := compile(name, tags, compression, opts)
	task.Special = true
	return task
}

func withExtra(task domain.CompileTask, cmds ...domain.Command) domain.CompileTask {
	task.ExtraCommands = append(task.ExtraCommands, cmds...)
	return task
}
