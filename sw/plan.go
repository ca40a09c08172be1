package sw

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/flexsw/flexsw/core/swerr"
)

// RunReconfigPlan applies a reconfiguration plan: blob is the staging
// configuration, plan is a line-oriented command stream. Commands:
//
//	insert tabl <pipeline> <new_id>
//	insert cond <pipeline> <new_id>
//	insert flex <pipeline> <flx_id> <true_next_id> <false_next_id>
//	insert register_array <new_id> <size> <bitwidth>
//	change tabl <pipeline> <id> <edge> <next_id>
//	change cond <pipeline> <id> true_next|false_next <next_id>
//	change flex <pipeline> <id> true_next|false_next <next_id>
//	change init <pipeline> <next_id>
//	change register_array_size <id> <value>
//	change register_array_bitwidth <id> <value>
//	delete tabl|cond|flex <pipeline> <id>
//	delete register_array <id>
//	trigger on|off [number]
//
// A failed command stops the run and leaves earlier edits applied; the
// control plane is responsible for compensating.
func (c *Context) RunReconfigPlan(blob []byte, plan io.Reader) error {
	if e := c.InitStaging(blob); e != nil {
		return e
	}

	scanner := bufio.NewScanner(plan)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if e := c.runPlanLine(strings.Fields(line)); e != nil {
			logger.Error("plan command failed",
				zap.Int("cxt", c.id),
				zap.Int("line", lineNo),
				zap.String("command", line),
				zap.Error(e),
			)
			return e
		}
	}
	if e := scanner.Err(); e != nil {
		return swerr.New(swerr.OpenPlanFileFail, "read plan: %v", e)
	}
	return nil
}

func (c *Context) runPlanLine(fields []string) error {
	badCommand := func() error {
		return swerr.New(swerr.InvalidCommandError, "malformed command %q", strings.Join(fields, " "))
	}
	if len(fields) < 2 {
		return badCommand()
	}
	op, target := fields[0], fields[1]
	args := fields[2:]

	atoi := func(s string) (int, error) {
		n, e := strconv.Atoi(s)
		if e != nil {
			return 0, swerr.New(swerr.InvalidCommandError, "not a number: %s", s)
		}
		return n, nil
	}

	switch op {
	case "insert":
		switch target {
		case "tabl":
			if len(args) != 2 {
				return badCommand()
			}
			return c.ReconfigInsertTable(args[0], args[1])
		case "cond":
			if len(args) != 2 {
				return badCommand()
			}
			return c.ReconfigInsertConditional(args[0], args[1])
		case "flex":
			if len(args) != 4 {
				return badCommand()
			}
			return c.ReconfigInsertFlex(args[0], args[1], args[2], args[3])
		case "register_array":
			if len(args) != 3 {
				return badCommand()
			}
			size, e := atoi(args[1])
			if e != nil {
				return e
			}
			bitwidth, e := atoi(args[2])
			if e != nil {
				return e
			}
			return c.ReconfigInsertRegisterArray(args[0], size, bitwidth)
		}
		return swerr.New(swerr.UnsupportedTargetError, "unsupported target for insert: %s", target)

	case "change":
		switch target {
		case "tabl":
			if len(args) != 4 {
				return badCommand()
			}
			return c.ReconfigChangeTable(args[0], args[1], args[2], args[3])
		case "cond", "flex":
			if len(args) != 4 {
				return badCommand()
			}
			trueBranch := args[2] == "true_next"
			if !trueBranch && args[2] != "false_next" {
				return badCommand()
			}
			return c.ReconfigChangeConditional(args[0], args[1], trueBranch, args[3])
		case "init":
			if len(args) != 2 {
				return badCommand()
			}
			return c.ReconfigChangeInit(args[0], args[1])
		case "register_array_size":
			if len(args) != 2 {
				return badCommand()
			}
			v, e := atoi(args[1])
			if e != nil {
				return e
			}
			return c.ReconfigChangeRegisterArray(args[0], RegisterChangeSize, v)
		case "register_array_bitwidth":
			if len(args) != 2 {
				return badCommand()
			}
			v, e := atoi(args[1])
			if e != nil {
				return e
			}
			return c.ReconfigChangeRegisterArray(args[0], RegisterChangeBitwidth, v)
		}
		return swerr.New(swerr.UnsupportedTargetError, "unsupported target for change: %s", target)

	case "delete":
		switch target {
		case "tabl":
			if len(args) != 2 {
				return badCommand()
			}
			return c.ReconfigDeleteTable(args[0], args[1])
		case "cond":
			if len(args) != 2 {
				return badCommand()
			}
			return c.ReconfigDeleteConditional(args[0], args[1])
		case "flex":
			if len(args) != 2 {
				return badCommand()
			}
			return c.ReconfigDeleteFlex(args[0], args[1])
		case "register_array":
			if len(args) != 1 {
				return badCommand()
			}
			return c.ReconfigDeleteRegisterArray(args[0])
		}
		return swerr.New(swerr.UnsupportedTargetError, "unsupported target for delete: %s", target)

	case "trigger":
		number := -1
		if len(args) == 1 {
			n, e := atoi(args[0])
			if e != nil {
				return e
			}
			number = n
		} else if len(args) > 1 {
			return badCommand()
		}
		switch target {
		case "on":
			return c.ReconfigTrigger(true, number)
		case "off":
			return c.ReconfigTrigger(false, number)
		}
		return swerr.New(swerr.UnsupportedTargetError, "unsupported target for trigger: %s", target)
	}
	return swerr.New(swerr.InvalidCommandError, "unsupported operation %s", op)
}

// RunReconfigPlanFiles is the file-path variant of RunReconfigPlan.
func (c *Context) RunReconfigPlanFiles(jsonPath, planPath string) error {
	blob, e := os.ReadFile(jsonPath)
	if e != nil {
		return swerr.New(swerr.OpenJSONFileFail, "%v", e)
	}
	plan, e := os.Open(planPath)
	if e != nil {
		return swerr.New(swerr.OpenPlanFileFail, "%v", e)
	}
	defer plan.Close()
	return c.RunReconfigPlan(blob, plan)
}
