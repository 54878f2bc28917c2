// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	DenvfileNotFoundId Id = iota + 1
	DenvfileParseErrorId
	WorkflowNotFoundId
	WorkflowCycleId
	UnknownTaskTypeId
	PortWaitTimeoutId
	RuntimeNotAvailableId
	ShellNotFoundId
	ConfigLoadFailedId
	DeploymentMissingId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // optional documentation links, rendered under "See also"
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	denvfileNotFoundIssue = &Issue{
		id: DenvfileNotFoundId,
		mdMsg: `
# No denvfile found!

We searched for a denvfile but couldn't find one in the expected locations.

## Search locations (in order of precedence):
1. The path given via --file
2. Current directory (denvfile.toml)

## Things you can try:
- Create a denvfile in your current directory:
~~~
$ denv init
~~~

- Or point denv at an existing one:
~~~
$ denv run "Run Server" --file /path/to/denvfile.toml
~~~

## Example denvfile structure:
~~~toml
modules = ["python-3.10", "web"]

[env]
FLASK_APP = "app.py"

[[ports]]
local_port = 5000
external_port = 80

[[workflows]]
name = "Run Server"

[[workflows.tasks]]
type = "shell.exec"
args = "python app.py"
~~~`,
	}

	denvfileParseErrorIssue = &Issue{
		id: DenvfileParseErrorId,
		mdMsg: `
# Failed to parse denvfile!

The denvfile exists but contains invalid TOML or violates the schema.

## Common causes:
- Syntax errors (missing quotes, stray brackets)
- Unknown fields (field names are strictly checked)
- Invalid values (bad port numbers, unknown task types, empty workflow names)

## Things you can try:
- Check the error position reported above (row and column)
- Validate the file without running anything:
~~~
$ denv validate
~~~
- Compare against a fresh scaffold:
~~~
$ denv init --stdout
~~~`,
	}

	workflowNotFoundIssue = &Issue{
		id: WorkflowNotFoundId,
		mdMsg: `
# Workflow not found!

The workflow you asked for is not defined in the denvfile.

## Things you can try:
- List the workflows the denvfile defines:
~~~
$ denv workflows
~~~
- Quote workflow names that contain spaces:
~~~
$ denv run "Run Server"
~~~`,
	}

	workflowCycleIssue = &Issue{
		id: WorkflowCycleId,
		mdMsg: `
# Workflow reference cycle!

Your workflows reference each other in a loop via workflow.run tasks,
so a run would never terminate.

## Things you can try:
- Check the two workflow names named in the error
- Extract the shared steps into a third workflow both can reference
- Remove the workflow.run task that closes the loop`,
	}

	unknownTaskTypeIssue = &Issue{
		id: UnknownTaskTypeId,
		mdMsg: `
# Unknown task type!

A workflow task uses a type denv does not know how to execute.

## Supported task types:
- "shell.exec" runs a shell command line (args required)
- "packager.install" installs dependencies for the denvfile's modules
- "workflow.run" runs another workflow by name (args required)

## Example:
~~~toml
[[workflows.tasks]]
type = "shell.exec"
args = "python app.py"
~~~`,
	}

	portWaitTimeoutIssue = &Issue{
		id: PortWaitTimeoutId,
		mdMsg: `
# Service never opened its port!

A task with wait_for_port was started, but the port never accepted a
connection within the timeout.

## Common causes:
- The service crashed during startup (check its output above)
- The service listens on a different port than wait_for_port says
- The service binds to a non-local interface
- Startup is slower than the timeout

## Things you can try:
- Check the service logs printed above this error
- Increase the timeout for the task:
~~~toml
[[workflows.tasks]]
type = "shell.exec"
args = "python app.py"
wait_for_port = 5000
timeout = "60s"
~~~
- Or raise the global default in your config:
~~~toml
port_wait_timeout = "60s"
~~~`,
	}

	runtimeNotAvailableIssue = &Issue{
		id: RuntimeNotAvailableId,
		mdMsg: `
# Runtime not available!

The requested runtime cannot be used on this system.

## Things you can try:
- Use the 'virtual' runtime instead (built-in shell):
~~~
$ denv run "Run Server" --runtime virtual
~~~
- Or set it as your default:
~~~toml
default_runtime = "virtual"
~~~`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# No shell found!

The native runtime could not find a shell to execute commands with.

## Things you can try:
- Set the SHELL environment variable to a valid shell path
- Install bash or another POSIX shell
- Use the built-in virtual shell:
~~~
$ denv run "Run Server" --runtime virtual
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your denv config file exists but could not be loaded.

## Things you can try:
- Check the file for TOML syntax errors
- Print the resolved config path:
~~~
$ denv config path
~~~
- Recreate a default config:
~~~
$ denv config init
~~~`,
	}

	deploymentMissingIssue = &Issue{
		id: DeploymentMissingId,
		mdMsg: `
# No deployment section!

The denvfile defines no [deployment] table, so there is nothing to deploy.

## Example:
~~~toml
[deployment]
target = "autoscale"
build = ["pip install -r requirements.txt"]
run = ["gunicorn app:app"]
~~~

Valid targets are "autoscale", "vm" and "static".`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- Trying to write to a protected directory
- A task's script file is not executable

## Things you can try:
- Check file/directory permissions
- Run denv from a directory you own`,
	}

	issues = map[Id]*Issue{
		denvfileNotFoundIssue.Id():    denvfileNotFoundIssue,
		denvfileParseErrorIssue.Id():  denvfileParseErrorIssue,
		workflowNotFoundIssue.Id():    workflowNotFoundIssue,
		workflowCycleIssue.Id():       workflowCycleIssue,
		unknownTaskTypeIssue.Id():     unknownTaskTypeIssue,
		portWaitTimeoutIssue.Id():     portWaitTimeoutIssue,
		runtimeNotAvailableIssue.Id(): runtimeNotAvailableIssue,
		shellNotFoundIssue.Id():       shellNotFoundIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		deploymentMissingIssue.Id():   deploymentMissingIssue,
		permissionDeniedIssue.Id():    permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
