package ai

// AnalysisPrompt asks the generator for the argument graph of an article.
//
// Arguments, in order: minimum nodes, maximum nodes, minimum level 1 nodes,
// maximum level 1 nodes, minimum level 2 nodes, minimum phases, maximum
// phases, article length in thousands of characters, article text.
const AnalysisPrompt = `
# Task Context
You are a rigorous argument analyst. Your task is to extract the complete argument skeleton of an article: not a summary of its paragraphs, but the full reasoning path the author takes from the starting point to the conclusion.

# Language Rules
- Detect the main language of the article.
- Write every free-text field (core_claim, summary, evidence, verdict, titles, labels) in that language.
- The values of node.type and connector.type are always the English keywords listed below and are never translated.

# Hard Rules (breaking any of them makes the output invalid)
- The verdict judges only the quality of the reasoning (rigor, evidence, coherence), never whether the author's position is right, important or valuable. Do not use praise words.
- Across all phases there must be at least %[1]d nodes. At least %[3]d of them are level 1 main claims and at least %[5]d are level 2 supporting claims.

# The Deletion Test
Before every decision ask: if this node were removed from the skeleton, what happens to the reader's understanding?
- The chain breaks (the reader can no longer get from the previous step to the next): keep it as level 1.
- The chain holds but is clearly weaker (a claim loses key support): keep it as level 2.
- Nothing changes for the reader: it is not a node.
The reverse test matters as much: if the article spends a lot of text on one step but the skeleton covers it with a single vague node, the reader will ask "based on what?". Split the step into several nodes or add level 2 support.

# Detailed Task Description & Rules
1. Reflect the real structure. Arguments are rarely a straight line. Recognize chains, forks (several scenarios reasoned out separately and then joined), historical mappings, straw man and rebuttal pairs, inductive collections and concessions. Use fork connectors where the argument branches and merge connectors where branches join. Historical cases used as arguments get their own nodes.
2. Argument density decides node density, not length. Dense reasoning needs more nodes than illustration. If more than about 800 characters argue one causal step, that step needs at least one level 1 node and one level 2 node.
3. Every level 1 node should be followed by at least one level 2 node supporting it. Level 2 nodes come directly after the level 1 node they support.
4. transition explains why the reader moves from this node to the next one. It is a logical bridge, not an announcement such as "next the author discusses". Each transition has at least 20 characters. The last node of the last phase has "transition": null and it is the only node with a null transition.
5. summary states what the author claims in this step in one or two sentences. Mark rebutted popular views as "Common objection: ...". Keep numeric reasoning chains intact.
6. evidence answers "based on what?" with concrete data, a specific case or historical event, a named authority, or the intermediate steps of the inference. evidence is always a non-empty string, never null.
7. A turning node marks a real change of direction in the reasoning, not a rhetorical "however".
8. Rebuttals come in pairs: the rebutted view as a setup node, the rebuttal as a reasoning node, joined by a rebuttal connector.
9. Gaps name exactly what is missing: which step is skipped, which alternative is ignored, and how much it weakens the conclusion. Watch for analogy used as proof, authority instead of reasoning, jumps from description to prescription, and over-attribution.
10. Split the argument into %[6]d-%[7]d phases. A phase is a stage of reasoning with its own sub-goal. Phase titles have at most 8 words; the subtitle says in one sentence what the phase establishes.
11. Every pair of adjacent nodes is linked by a connector, or takes part in a fork or merge.
    - causal: A therefore B
    - parallel: A and B side by side
    - rebuttal: B rebuts A
    - evidence: B is an instance of A
    - self_question: the author questions their own reasoning
    - fork: "from" is a single id, "to" is an array of at least two ids
    - merge: "from" is an array of at least two ids, "to" is a single id
    Every other connector has a single id in both "from" and "to". The label is a 2-6 word phrase shown on the edge.
12. one_liner is a collapsed preview of at most 25 words, more specific than the title and shorter than the summary.

# Output Formatting
Output only the JSON object below. No extra text, no explanation, no Markdown.

{
  "core_claim": "The single most central, contestable claim of the article.",
  "argument_density": "N steps / M thousand characters",
  "claim_clarity": "high|medium|low",
  "logic_completeness": "N gaps",
  "verdict": {
    "strongest": "Name the step and why it holds logically. One or two sentences.",
    "weakest": "Name the step and where its logic or evidence fails. One or two sentences.",
    "reading_advice": "Which parts deserve close reading and which can be skimmed."
  },
  "phases": [
    {
      "id": 1,
      "title": "Phase title",
      "subtitle": "What this phase establishes",
      "nodes": [
        {
          "id": "1-0",
          "level": 1,
          "type": "origin",
          "title": "Short title",
          "one_liner": "Collapsed preview",
          "summary": "What the author claims in this step.",
          "evidence": "Why the claim holds.",
          "transition": "Why the reader moves on to the next node."
        }
      ],
      "connectors": [
        {
          "type": "causal",
          "from": "1-0",
          "to": "1-1",
          "label": "therefore"
        }
      ],
      "gaps": [
        {
          "after_node": "1-1",
          "title": "Gap title",
          "detail": "What is missing, what alternative is ignored, how much it matters.",
          "severity": "low|medium|high"
        }
      ]
    }
  ]
}

# Field Rules
- node.type is one of: origin, setup, reasoning, turning, conclusion
- node.level is 1 or 2
- node.id has the form "<phase>-<index>", for example "1-0", "1-1", "2-0"; ids are unique across the whole output
- connector.type is one of: causal, parallel, rebuttal, evidence, self_question, fork, merge
- gap.severity is one of: low, medium, high; gap.after_node is an existing node id
- gaps may be an empty array; connectors must always be present
- %[6]d-%[7]d phases
- %[1]d-%[2]d nodes in total, %[3]d-%[4]d of them level 1, at least %[5]d of them level 2
- The article has about %[8]d thousand characters

# Article
%[9]s
`
