package jmx

import (
	"sort"
	"strconv"
	"strings"
)

// Version attributes written on the root element.
const (
	planVersion    = "1.2"
	planProperties = "5.0"
	jmeterVersion  = "5.6.3"
)

// Property helpers follow JMeter's *Prop conventions.

func StringProp(name, value string) *Node {
	return El("stringProp", "name", name).WithText(value)
}

func BoolProp(name string, value bool) *Node {
	return El("boolProp", "name", name).WithText(strconv.FormatBool(value))
}

func IntProp(name string, value int) *Node {
	return El("intProp", "name", name).WithText(strconv.Itoa(value))
}

func LongProp(name string, value int64) *Node {
	return El("longProp", "name", name).WithText(strconv.FormatInt(value, 10))
}

func CollectionProp(name string, items ...*Node) *Node {
	return El("collectionProp", "name", name).Append(items...)
}

// ElementProp builds an elementProp; extra attributes are name/value pairs.
func ElementProp(name, elementType string, attrs ...string) *Node {
	return El("elementProp", append([]string{"name", name, "elementType", elementType}, attrs...)...)
}

// HashTree wraps children in JMeter's hashTree container.
func HashTree(children ...*Node) *Node {
	return El("hashTree").Append(children...)
}

// Element builds a test element with the usual guiclass/testclass/testname/enabled attributes.
func Element(tag, guiclass, testname string) *Node {
	return El(tag, "guiclass", guiclass, "testclass", tag, "testname", testname, "enabled", "true")
}

// Document wraps the test plan and its tree in the jmeterTestPlan root.
func Document(plan *Node, tree *Node) *Node {
	return El("jmeterTestPlan", "version", planVersion, "properties", planProperties, "jmeter", jmeterVersion).
		Append(HashTree(plan, tree))
}

// Variable is a user-defined variable on the test plan.
type Variable struct {
	Name  string
	Value string
}

// TestPlan builds the TestPlan element with user-defined variables.
func TestPlan(name, comments string, vars []Variable) *Node {
	args := CollectionProp("Arguments.arguments")
	for _, v := range vars {
		args.Append(ElementProp(v.Name, "Argument").Append(
			StringProp("Argument.name", v.Name),
			StringProp("Argument.value", v.Value),
			StringProp("Argument.metadata", "="),
		))
	}

	return Element("TestPlan", "TestPlanGui", name).Append(
		StringProp("TestPlan.comments", comments),
		BoolProp("TestPlan.functional_mode", false),
		BoolProp("TestPlan.tearDown_on_shutdown", true),
		BoolProp("TestPlan.serialize_threadgroups", false),
		ElementProp("TestPlan.user_defined_variables", "Arguments",
			"guiclass", "ArgumentsPanel", "testclass", "Arguments", "testname", "User Defined Variables", "enabled", "true",
		).Append(args),
		StringProp("TestPlan.user_define_classpath", ""),
	)
}

// ThreadGroupSettings configures a ThreadGroup.
type ThreadGroupSettings struct {
	Name          string
	Threads       int
	RampUpSeconds int
	Loops         int
}

// ThreadGroup builds a ThreadGroup with its LoopController.
func ThreadGroup(s ThreadGroupSettings) *Node {
	loop := ElementProp("ThreadGroup.main_controller", "LoopController",
		"guiclass", "LoopControlPanel", "testclass", "LoopController", "testname", "Loop Controller", "enabled", "true",
	).Append(
		BoolProp("LoopController.continue_forever", false),
		StringProp("LoopController.loops", strconv.Itoa(s.Loops)),
	)

	return Element("ThreadGroup", "ThreadGroupGui", s.Name).Append(
		StringProp("ThreadGroup.on_sample_error", "continue"),
		loop,
		StringProp("ThreadGroup.num_threads", strconv.Itoa(s.Threads)),
		StringProp("ThreadGroup.ramp_time", strconv.Itoa(s.RampUpSeconds)),
		BoolProp("ThreadGroup.scheduler", false),
		StringProp("ThreadGroup.duration", ""),
		StringProp("ThreadGroup.delay", ""),
		BoolProp("ThreadGroup.same_user_on_next_iteration", true),
	)
}

// HeaderManager builds a HeaderManager from ordered name/value headers.
func HeaderManager(name string, headers []Variable) *Node {
	coll := CollectionProp("HeaderManager.headers")
	for _, h := range headers {
		coll.Append(ElementProp("", "Header").Append(
			StringProp("Header.name", h.Name),
			StringProp("Header.value", h.Value),
		))
	}
	return Element("HeaderManager", "HeaderPanel", name).Append(coll)
}

// SamplerSettings configures an HTTPSamplerProxy.
type SamplerSettings struct {
	Name              string
	Method            string
	Path              string
	Body              string // Sent raw when non-empty
	Domain            string
	Port              string
	Protocol          string
	ConnectTimeoutMs  int
	ResponseTimeoutMs int
}

// HTTPSampler builds an HTTPSamplerProxy. Domain, port and protocol default to the
// plan-level ${domain}, ${port} and ${protocol} variables.
func HTTPSampler(s SamplerSettings) *Node {
	domain, port, protocol := s.Domain, s.Port, s.Protocol
	if domain == "" {
		domain = "${domain}"
	}
	if port == "" {
		port = "${port}"
	}
	if protocol == "" {
		protocol = "${protocol}"
	}

	sampler := Element("HTTPSamplerProxy", "HttpTestSampleGui", s.Name)
	if s.Body != "" {
		sampler.Append(
			BoolProp("HTTPSampler.postBodyRaw", true),
			ElementProp("HTTPsampler.Arguments", "Arguments").Append(
				CollectionProp("Arguments.arguments",
					ElementProp("", "HTTPArgument").Append(
						BoolProp("HTTPArgument.always_encode", false),
						StringProp("Argument.value", s.Body),
						StringProp("Argument.metadata", "="),
					),
				),
			),
		)
	} else {
		sampler.Append(
			ElementProp("HTTPsampler.Arguments", "Arguments",
				"guiclass", "HTTPArgumentsPanel", "testclass", "Arguments", "testname", "User Defined Variables", "enabled", "true",
			).Append(CollectionProp("Arguments.arguments")),
		)
	}

	return sampler.Append(
		StringProp("HTTPSampler.domain", domain),
		StringProp("HTTPSampler.port", port),
		StringProp("HTTPSampler.protocol", protocol),
		StringProp("HTTPSampler.contentEncoding", "UTF-8"),
		StringProp("HTTPSampler.path", s.Path),
		StringProp("HTTPSampler.method", s.Method),
		BoolProp("HTTPSampler.follow_redirects", true),
		BoolProp("HTTPSampler.auto_redirects", false),
		BoolProp("HTTPSampler.use_keepalive", true),
		BoolProp("HTTPSampler.DO_MULTIPART_POST", false),
		StringProp("HTTPSampler.connect_timeout", timeout(s.ConnectTimeoutMs)),
		StringProp("HTTPSampler.response_timeout", timeout(s.ResponseTimeoutMs)),
	)
}

func timeout(ms int) string {
	if ms <= 0 {
		return ""
	}
	return strconv.Itoa(ms)
}

// ResponseCodeAssertion asserts the response code matches pattern.
func ResponseCodeAssertion(name, pattern string) *Node {
	return Element("ResponseAssertion", "AssertionGui", name).Append(
		CollectionProp("Asserion.test_strings", StringProp(strconv.Itoa(hashCode(pattern)), pattern)),
		StringProp("Assertion.custom_message", ""),
		StringProp("Assertion.test_field", "Assertion.response_code"),
		BoolProp("Assertion.assume_success", false),
		IntProp("Assertion.test_type", 1),
	)
}

// DurationAssertion fails samples slower than maxMs.
func DurationAssertion(name string, maxMs int) *Node {
	return Element("DurationAssertion", "DurationAssertionGui", name).Append(
		StringProp("DurationAssertion.duration", strconv.Itoa(maxMs)),
	)
}

// JSONExtractor stores the value at expr in the variable refName.
func JSONExtractor(name, refName, expr string) *Node {
	return Element("JSONPostProcessor", "JSONPostProcessorGui", name).Append(
		StringProp("JSONPostProcessor.referenceNames", refName),
		StringProp("JSONPostProcessor.jsonPathExprs", expr),
		StringProp("JSONPostProcessor.match_numbers", "1"),
		StringProp("JSONPostProcessor.defaultValues", "NOT_FOUND"),
	)
}

// CSVDataSet reads variables from filename, recycling at EOF.
func CSVDataSet(name, filename string, variables []string) *Node {
	vars := append([]string(nil), variables...)
	sort.Strings(vars)
	names := strings.Join(vars, ",")

	return Element("CSVDataSet", "TestBeanGUI", name).Append(
		StringProp("delimiter", ","),
		StringProp("fileEncoding", "UTF-8"),
		StringProp("filename", filename),
		BoolProp("ignoreFirstLine", true),
		BoolProp("quotedData", false),
		BoolProp("recycle", true),
		StringProp("shareMode", "shareMode.all"),
		BoolProp("stopThread", false),
		StringProp("variableNames", names),
	)
}

// SummaryReport builds a ResultCollector backed by the Summary Report listener.
func SummaryReport(name string) *Node {
	save := El("value", "class", "SampleSaveConfiguration")
	for _, field := range []string{"time", "latency", "timestamp", "success", "label", "code", "message", "threadName", "dataType", "assertions", "bytes", "sentBytes", "threadCounts", "idleTime", "connectTime"} {
		save.Append(El(field).WithText("true"))
	}

	return Element("ResultCollector", "SummaryReport", name).Append(
		BoolProp("ResultCollector.error_logging", false),
		El("objProp").Append(El("name").WithText("saveConfig"), save),
		StringProp("filename", ""),
	)
}

// hashCode mirrors java.lang.String.hashCode, which JMeter uses to key assertion patterns.
func hashCode(s string) int {
	var h int32
	for _, r := range s {
		h = 31*h + int32(r)
	}
	return int(h)
}
