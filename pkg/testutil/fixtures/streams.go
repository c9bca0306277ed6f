package fixtures

// HelloStream is a short run: a run start, one answer split inside its JSON
// across two chunks, and the end marker
var HelloStream = []string{
	"event: msg\ndata: {\"run_id\":\"r1\"}\n",
	"data: {\"final_result\":\"He",
	"llo\"}\n",
	"data: {\"message\":\"[DONE]\"}\n",
}

// GraphStreamText is a full run across three nodes, including a tool call,
// an application error on one node and a non-JSON data line
const GraphStreamText = "event: msg\r\n" +
	"data: {\"run_id\":\"run-42\"}\r\n" +
	"\r\n" +
	"event: on_node_start\r\n" +
	"data: {\"node\":\"retriever\",\"progress\":\"문서 검색 중\"}\r\n" +
	"data: {\"node\":\"retriever\",\"tool\":{\"name\":\"search\",\"content\":\"검색 결과 세 건을 찾았습니다\"}}\r\n" +
	"data: not-json\r\n" +
	"data: {\"updates\":{\"planner\":{\"steps\":2}}}\r\n" +
	"data: {\"node\":\"planner\",\"status_code\":500}\r\n" +
	"data: {\"node\":\"writer\",\"llm\":{\"token\":\"안\"}}\r\n" +
	"data: {\"node\":\"writer\",\"progress\":\"답변 작성 중\"}\r\n" +
	"data: {\"final_result\":\"안녕하세요, \"}\r\n" +
	"data: {\"final_result\":\"무엇을 도와드릴까요?\"}\r\n" +
	"data: {\"message\":\"[DONE]\"}"

// GraphAnswer is the answer GraphStreamText produces
const GraphAnswer = "안녕하세요, 무엇을 도와드릴까요?"

// GraphNodes are the nodes GraphStreamText reports on
var GraphNodes = []struct{ ID, Name string }{
	{"n-retriever", "retriever"},
	{"n-planner", "planner"},
	{"n-writer", "writer"},
}
