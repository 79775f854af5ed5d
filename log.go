package wasmlauncher

import "github.com/ethereum/go-ethereum/log"

// logger is the package-level structured logger, matching the teacher's
// go-ethereum log.New("component", ...) idiom used throughout core/vm.
var logger = log.New("component", "wasmlauncher")

func logConstruct(id string, size int, metering bool, cached bool) {
	logger.Debug("constructed launcher instance", "id", id, "wasmBytes", size, "metering", metering, "cached", cached)
}

func logConstructError(id string, err error) {
	logger.Warn("construct failed", "id", id, "err", err)
}

func logRunStart(id string, entry string, gasLimit, gasPriority uint64) {
	logger.Debug("run start", "id", id, "entry", entry, "gasLimit", gasLimit, "gasPriority", gasPriority)
}

func logRunResult(id string, code ProgramCode, gasUsed uint64, err error) {
	if err != nil {
		logger.Warn("run failed", "id", id, "code", code, "gasUsed", gasUsed, "err", err)
		return
	}
	logger.Debug("run finished", "id", id, "code", code, "gasUsed", gasUsed)
}

func logExport(id string, size int, err error) {
	if err != nil {
		logger.Warn("export failed", "id", id, "err", err)
		return
	}
	logger.Debug("module exported", "id", id, "bytes", size)
}
