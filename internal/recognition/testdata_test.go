package recognition

const sampleResult = `{
  "jobName": "transcription-job-1",
  "status": "COMPLETED",
  "results": {
    "transcripts": [{"transcript": "Hola, buenos días. Hola."}],
    "speaker_labels": {
      "speakers": 2,
      "segments": [
        {"speaker_label": "spk_0", "start_time": "0.0", "end_time": "1.2",
         "items": [{"start_time": "0.0", "end_time": "0.4", "speaker_label": "spk_0"},
                   {"start_time": "0.5", "end_time": "0.8", "speaker_label": "spk_0"},
                   {"start_time": "0.9", "end_time": "1.2", "speaker_label": "spk_0"}]},
        {"speaker_label": "spk_1", "start_time": "2.0", "end_time": "2.4",
         "items": [{"start_time": "2.0", "end_time": "2.4", "speaker_label": "spk_1"}]}
      ]
    },
    "items": [
      {"type": "pronunciation", "start_time": "0.0", "end_time": "0.4", "alternatives": [{"confidence": "0.99", "content": "Hola"}]},
      {"type": "punctuation", "alternatives": [{"confidence": "0.0", "content": ","}]},
      {"type": "pronunciation", "start_time": "0.5", "end_time": "0.8", "alternatives": [{"confidence": "0.98", "content": "buenos"}]},
      {"type": "pronunciation", "start_time": "0.9", "end_time": "1.2", "alternatives": [{"confidence": "0.97", "content": "días"}]},
      {"type": "punctuation", "alternatives": [{"confidence": "0.0", "content": "."}]},
      {"type": "pronunciation", "start_time": "2.0", "end_time": "2.4", "alternatives": [{"confidence": "0.99", "content": "Hola"}]},
      {"type": "punctuation", "alternatives": [{"confidence": "0.0", "content": "."}]}
    ]
  }
}`
